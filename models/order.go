package models

import "time"

type Order struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Reference    string  `gorm:"type:varchar(12);uniqueIndex" json:"reference"`
	UserID       *uint   `gorm:"index" json:"user_id,omitempty"`
	User         *User   `gorm:"foreignKey:UserID" json:"-"`
	CustomerName string  `gorm:"type:varchar(255);not null" json:"customer_name"`
	TeeOffTime   string  `gorm:"type:varchar(50)" json:"tee_off_time"`
	CourseID     uint    `gorm:"not null;index" json:"course_id"`
	Course       Course  `gorm:"foreignKey:CourseID" json:"-"`
	Status       string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`

	// Client-generated key so a double-submitted cart creates one order.
	IdempotencyKey *string `gorm:"type:varchar(64);uniqueIndex" json:"idempotency_key,omitempty"`

	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}
