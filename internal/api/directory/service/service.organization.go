// Package directorysvc chứa các service của pipeline review directory:
// generator, moderation và publisher, cùng các policy thuần (quota, similarity, lịch publish).
package directorysvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "review_factory/internal/api/base/service"
	"review_factory/internal/api/directory/models"
	"review_factory/internal/common"
	"review_factory/internal/global"
)

// OrganizationService là cấu trúc chứa các phương thức liên quan đến organization trong directory
type OrganizationService struct {
	*basesvc.BaseServiceMongoImpl[models.Organization]
}

// NewOrganizationService tạo mới OrganizationService từ collection đã đăng ký
func NewOrganizationService() (*OrganizationService, error) {
	collection, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exists {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Organizations, common.ErrNotFound)
	}

	return &OrganizationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Organization](collection),
	}, nil
}

// FindDraftPool lấy tối đa limit organization đang ở trạng thái draft
// (pool mặc định khi không chỉ định target cụ thể)
func (s *OrganizationService) FindDraftPool(ctx context.Context, limit int64) ([]models.Organization, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit)

	return s.Find(ctx, bson.M{"status": models.OrganizationStatusDraft}, opts)
}

// ResolveTargets resolve danh sách identifier hỗn hợp (ObjectID hex hoặc slug) thành organizations.
// Identifier không resolve được sẽ trả lỗi để caller fail sớm thay vì lặng lẽ bỏ qua target.
func (s *OrganizationService) ResolveTargets(ctx context.Context, targets []string) ([]models.Organization, error) {
	results := make([]models.Organization, 0, len(targets))

	for _, target := range targets {
		var filter bson.M
		if id, err := primitive.ObjectIDFromHex(target); err == nil {
			filter = bson.M{"_id": id}
		} else {
			filter = bson.M{"slug": target}
		}

		org, err := s.FindOne(ctx, filter, nil)
		if err != nil {
			return nil, fmt.Errorf("không resolve được target %q: %w", target, err)
		}
		results = append(results, org)
	}

	return results, nil
}

// MarkPublished flip organization từ draft sang published.
// Điều kiện status còn draft nằm ngay trong filter để tránh ghi thừa khi nhiều review
// của cùng org đến hạn trong cùng một run. Trả về true nếu có flip thật sự.
func (s *OrganizationService) MarkPublished(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.OrganizationStatusDraft,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.OrganizationStatusPublished,
			"updatedAt": time.Now().UnixMilli(),
		},
	}

	result, err := s.Collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return result.ModifiedCount > 0, nil
}

// IncReviewCount tăng reviewCount của organization thêm delta
func (s *OrganizationService) IncReviewCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	update := bson.M{
		"$inc": bson.M{"reviewCount": delta},
		"$set": bson.M{"updatedAt": time.Now().UnixMilli()},
	}

	_, err := s.Collection().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}
