// Package database - Index cho các collection directory (reviews, organizations).
package database

import (
	"context"
	"strings"

	"review_factory/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateDirectoryIndexes tạo các index phục vụ các truy vấn của pipeline.
// Gọi một lần khi khởi động job; index đã tồn tại không phải lỗi.
func CreateDirectoryIndexes(ctx context.Context, db *mongo.Database) error {
	reviews := db.Collection(global.MongoDB_ColNames.Reviews)

	// reviews: (organizationId, status) — đếm cap và lọc pending theo org
	if _, err := reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organizationId", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("review_org_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// reviews: (status, publishedAt) — phase A due-flip và tính base time của phase B
	if _, err := reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "publishedAt", Value: 1},
		},
		Options: options.Index().SetName("review_status_published_at"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// organizations: slug unique — resolve target từ CLI
	organizations := db.Collection(global.MongoDB_ColNames.Organizations)
	if _, err := organizations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("organization_slug").SetUnique(true).SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// organizations: status — chọn pool các org còn draft
	if _, err := organizations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("organization_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
