package main

import (
	"github.com/sirupsen/logrus"

	"github.com/Friend-Renter/fr-marketing-api/internal/global"
)

// InitRegistry đăng ký các collection vào registry toàn cục.
// Service lấy collection qua registry thay vì tự mở từ session.
func InitRegistry() {
	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)

	if _, err := global.RegistryCollections.Register(
		global.MongoDB_ColNames.Leads,
		db.Collection(global.MongoDB_ColNames.Leads),
	); err != nil {
		logrus.Fatalf("Failed to register leads collection: %v", err)
	}

	logrus.Info("Initialized collection registry")
}
