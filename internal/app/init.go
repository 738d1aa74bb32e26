// Package app khởi tạo các thành phần dùng chung cho cả ba batch job:
// config, validator, kết nối MongoDB, registry collections và index.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"review_factory/config"
	"review_factory/internal/database"
	"review_factory/internal/global"
	"review_factory/internal/logger"
)

// InitGlobal khởi tạo tất cả biến toàn cục theo đúng thứ tự phụ thuộc.
// Lỗi ở bất kỳ bước nào là fatal: batch job không được chạy với state khởi tạo dở dang.
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabase()
}

// initColNames gán tên các collection MongoDB
func initColNames() {
	global.MongoDB_ColNames.Organizations = "directory_organizations"
	global.MongoDB_ColNames.Reviews = "directory_reviews"
}

// initValidator khởi tạo validator với các custom rule của domain
func initValidator() {
	global.InitValidator()
}

// initConfig load cấu hình từ env; thiếu key required là dừng ngay
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatal("Không thể khởi tạo cấu hình. Dừng chương trình.")
	}
}

// initDatabase khởi tạo kết nối MongoDB
func initDatabase() {
	client, err := database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Không thể kết nối MongoDB: %v", err)
	}
	global.MongoDB_Session = client
}

// InitRegistry đăng ký các collection vào registry và đảm bảo index tồn tại
func InitRegistry(ctx context.Context) {
	log := logger.GetAppLogger()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)

	collectionNames := []string{
		global.MongoDB_ColNames.Organizations,
		global.MongoDB_ColNames.Reviews,
	}
	for _, name := range collectionNames {
		if _, err := global.RegistryCollections.Register(name, db.Collection(name)); err != nil {
			logrus.Fatalf("Không đăng ký được collection %s: %v", name, err)
		}
	}

	if err := database.CreateDirectoryIndexes(ctx, db); err != nil {
		// Index fail không chặn run: query vẫn đúng, chỉ chậm hơn
		log.WithError(err).Warn("Không tạo được đầy đủ index")
	}

	log.WithField("collections", len(collectionNames)).Info("Đã đăng ký collections và index")
}

// Shutdown đóng các kết nối trước khi job thoát
func Shutdown() {
	if global.MongoDB_Session != nil {
		_ = database.CloseInstance(global.MongoDB_Session)
	}
}
