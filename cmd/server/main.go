package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Friend-Renter/fr-marketing-api/internal/database"
	"github.com/Friend-Renter/fr-marketing-api/internal/global"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread() {
	app := InitFiberApp()

	address := global.ServerConfig.Address
	log := logger.GetAppLogger()

	// Shutdown theo signal: dừng nhận request mới, đóng connection sau
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		log.WithFields(map[string]interface{}{
			"signal": sig.String(),
		}).Info("Shutdown signal received, stopping server...")

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error during server shutdown")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address": address,
	}).Info("Starting Fiber server")

	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	// Listen trả về sau khi Shutdown hoàn tất — giờ mới đóng connections
	if global.MongoDB_Session != nil {
		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.WithError(err).Error("Error closing MongoDB connection")
		}
	}
	if global.Redis_Session != nil {
		if err := database.CloseRedisInstance(global.Redis_Session); err != nil {
			log.WithError(err).Error("Error closing Redis connection")
		}
	}

	log.Info("Server stopped")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục (config, MongoDB, Redis)
	InitGlobal()

	// Khởi tạo registry collections
	InitRegistry()

	// Chạy Fiber server trên main thread
	main_thread()
}
