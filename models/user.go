package models

import "time"

// Account status values. Self-registered accounts start as pending and need
// a superuser approval before they can log in.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type User struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	Name             string   `gorm:"type:varchar(255);not null" json:"name"`
	Email            string   `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password         string   `gorm:"type:varchar(255);not null" json:"-"`
	Role             string   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status           string   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DisplayName      string   `gorm:"type:varchar(255)" json:"display_name"`
	Phone            string   `gorm:"type:varchar(50)" json:"phone"`
	MembershipNumber string   `gorm:"type:varchar(50)" json:"membership_number"`
	Courses          []Course `gorm:"many2many:user_courses" json:"courses"`
	DefaultCourseID  *uint    `gorm:"index" json:"default_course_id,omitempty"`
	DefaultCourse    *Course  `gorm:"foreignKey:DefaultCourseID" json:"default_course,omitempty"`

	// Password reset flow: 6-digit code with a short expiry window.
	ResetCode        string     `gorm:"type:varchar(6)" json:"-"`
	ResetCodeExpires *time.Time `json:"-"`

	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseIDs flattens the assigned courses for API responses.
func (u *User) CourseIDs() []uint {
	ids := make([]uint, 0, len(u.Courses))
	for _, c := range u.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// HasCourse reports whether a course is among the user's assignments.
func (u *User) HasCourse(courseID uint) bool {
	for _, c := range u.Courses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}
