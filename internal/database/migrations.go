package database

import (
	"WAGroups-Backend/internal/auth"
	"WAGroups-Backend/internal/config"
	"WAGroups-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs migrations for every model.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Ordered for foreign keys: groups before click events, admins before
	// refresh tokens.
	models := []interface{}{
		&domain.Group{},
		&domain.ClickEvent{},
		&domain.AdminUser{},
		&domain.RefreshToken{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			modelName := fmt.Sprintf("%T", model)
			log.Error("failed to migrate model", zap.String("model", modelName), zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedAdmin creates the configured admin account when none exists. The
// password is stored only as a bcrypt hash.
func SeedAdmin(db *gorm.DB, cfg *config.Auth, passwords *auth.PasswordService, log *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.AdminUser{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if count > 0 {
		log.Info("admin account already exists, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	if err := auth.IsValidPassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin password rejected: %w", err)
	}

	hash, err := passwords.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := domain.AdminUser{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Info("seeded admin account", zap.String("username", admin.Username))
	return nil
}
