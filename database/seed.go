package database

import (
	"os"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedAccount struct {
	Name     string
	Email    string
	Password string
	Role     string
}

var seedAccounts = []seedAccount{
	{"Super User", "super@fairway.local", "super123", session.RoleSuperuser},
	{"Admin User", "admin@fairway.local", "admin123", session.RoleAdmin},
	{"Kitchen Staff", "kitchen@fairway.local", "kitchen123", session.RoleKitchen},
	{"Cashier", "cashier@fairway.local", "cashier123", session.RoleCashier},
	{"Demo Member", "user@fairway.local", "user123", session.RoleUser},
}

// Seed creates the baseline accounts and a demo course with a small menu.
// Idempotent: existing records are left alone. Disabled when SEED_DATA=false.
func Seed(db *gorm.DB) error {
	if os.Getenv("SEED_DATA") == "false" {
		return nil
	}

	var course models.Course
	err := db.Where("name = ?", "Royal Fairway Golf Club").First(&course).Error
	if err == gorm.ErrRecordNotFound {
		course = models.Course{
			Name:        "Royal Fairway Golf Club",
			Location:    "Stellenbosch",
			Description: "18-hole championship course",
			Active:      true,
		}
		if err := db.Create(&course).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Seeded course: %s", course.Name)

		menu := []models.MenuItem{
			{CourseID: course.ID, Name: "Club Sandwich", Description: "Chicken, bacon, egg", Price: 95, Category: "Light Meals", Available: true},
			{CourseID: course.ID, Name: "Halfway House Burger", Description: "Beef burger and chips", Price: 120, Category: "Light Meals", Available: true},
			{CourseID: course.ID, Name: "Draught Beer", Description: "500ml local lager", Price: 45, Category: "Drinks", Available: true},
			{CourseID: course.ID, Name: "Sports Drink", Description: "Isotonic, assorted flavours", Price: 30, Category: "Drinks", Available: true},
		}
		for i := range menu {
			if err := db.Create(&menu[i]).Error; err != nil {
				return err
			}
		}
	} else if err != nil {
		return err
	}

	for _, acct := range seedAccounts {
		var existing models.User
		if err := db.Where("email = ?", acct.Email).First(&existing).Error; err == nil {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := models.User{
			Name:     acct.Name,
			Email:    acct.Email,
			Password: string(hashed),
			Role:     acct.Role,
			Status:   models.StatusApproved,
		}
		if session.StaffRole(acct.Role) || acct.Role == session.RoleUser {
			user.Courses = []models.Course{course}
			user.DefaultCourseID = &course.ID
		}

		if err := db.Create(&user).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Seeded account: %s (role=%s)", user.Email, user.Role)
	}

	return nil
}
