package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/database"
	"github.com/Friend-Renter/fr-marketing-api/internal/global"
)

// InitGlobal khởi tạo các biến toàn cục theo thứ tự phụ thuộc
func InitGlobal() {
	initColNames()       // Khởi tạo tên các collection trong database
	initValidator()      // Khởi tạo validator
	initConfig()         // Khởi tạo cấu hình server
	initDatabase_Mongo() // Khởi tạo kết nối MongoDB
	initDatabase_Redis() // Khởi tạo kết nối Redis
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Leads = "mkt_leads"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (đăng ký custom validator no_xss)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server. Thiếu secret bắt buộc
// (Mongo, Redis, reCAPTCHA) là fatal ngay tại đây, không chờ đến request.
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối MongoDB và đảm bảo indexes
func initDatabase_Mongo() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreateLeadIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create lead indexes: %v", err)
	}
	logrus.Info("Ensured lead indexes")
}

// Hàm khởi tạo kết nối Redis (rate limit, idempotency, catalog cache)
func initDatabase_Redis() {
	var err error
	global.Redis_Session, err = database.GetRedisInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get redis instance: %v", err)
	}
	logrus.Info("Connected to Redis")
}
