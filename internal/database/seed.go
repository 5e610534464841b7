package database

import (
	"errors"
	"log"

	"vms/internal/auth"
	"vms/internal/model"

	"gorm.io/gorm"
)

// SeedAdmin creates the initial System Admin account if no admin row exists
// yet, so a fresh deployment is operable out of the box.
func SeedAdmin(db *gorm.DB) error {
	var admin model.User
	err := db.Where("role = ?", model.RoleAdmin).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return err
	}

	email := "admin@vms.com"
	seed := model.User{
		FullName:     "System Admin",
		PhoneNumber:  "+910000000000",
		Email:        &email,
		PasswordHash: hash,
		Address: model.Address{
			Street:  "Main St",
			City:    "HQ",
			State:   "TX",
			Pincode: "123456",
		},
		Role:       model.RoleAdmin,
		IsVerified: true,
	}

	if err := db.Create(&seed).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin user.")
	return nil
}
