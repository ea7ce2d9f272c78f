// Command admin_seed creates the administrator account from ADMIN_* variables.
package main

import (
	"context"
	"errors"
	"os"

	"investa/internal/config"
	"investa/internal/logger"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	if err := repositories.InitDB(cfg); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if repositories.CacheService != nil {
			_ = repositories.CacheService.Close()
		}
	}()

	ctx := context.Background()
	users := repositories.NewUserRepository(repositories.DB, repositories.CacheService, log)

	if _, err := users.GetByEmail(ctx, adminEmail); err == nil {
		log.Info("admin user already exists", zap.String("email", adminEmail))
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		log.Fatal("failed to look up admin", zap.Error(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	promocode, err := utils.GeneratePromocode()
	if err != nil {
		log.Fatal("failed to generate promocode", zap.Error(err))
	}

	admin := &models.User{
		FirstName:         "Admin",
		LastName:          "User",
		Email:             adminEmail,
		PhoneNumber:       adminPhone,
		Password:          string(hashedPassword),
		Promocode:         promocode,
		Role:              models.RoleAdmin,
		MembershipFeePaid: true,
		TokenVersion:      1,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal("failed to create admin user", zap.Error(err))
	}

	log.Info("admin account created", zap.Uint("user_id", admin.ID), zap.String("email", adminEmail))
}
