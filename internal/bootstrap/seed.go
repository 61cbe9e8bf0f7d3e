package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/config"
	"github.com/onboardhq/onboard/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Collaborator{},
		&model.CalendarEvent{},
	)
}

// SeedAdminUser creates the initial administrator account from the
// ADMIN_USERNAME / ADMIN_EMAIL / ADMIN_PASSWORD environment variables.
// Credentials are never baked into the binary; when the variables are
// unset the seed is skipped and the first registered user becomes admin.
func SeedAdminUser(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("admin seed variables not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ? OR email = ?", cfg.AdminUsername, cfg.AdminEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		FullName:     "Administrator",
		PasswordHash: string(hashedPasswordBytes),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user %q seeded successfully", cfg.AdminUsername)
	return nil
}
