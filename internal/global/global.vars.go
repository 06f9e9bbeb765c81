package global

import (
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Leads string // Tên collection cho lead marketing (host/renter)
}

// Các biến toàn cục — được khởi tạo một lần tại composition root (cmd/server/init.go),
// các service không tự mở connection.
var Validate *validator.Validate                                          // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                         // Phiên kết nối tới MongoDB
var Redis_Session *redis.Client                                           // Phiên kết nối tới Redis (rate limit, idempotency, catalog cache)
var ServerConfig *config.Configuration                                    // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
