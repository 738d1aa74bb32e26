package global

import (
	"review_factory/config"
	"review_factory/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_Directory_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Directory_CollectionName struct {
	Organizations string // Tên collection cho tổ chức trong directory
	Reviews       string // Tên collection cho review
}

// Các biến toàn cục
var Validate *validator.Validate                                                                   // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                                  // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                                     // Cấu hình của job
var MongoDB_ColNames MongoDB_Directory_CollectionName = *new(MongoDB_Directory_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
