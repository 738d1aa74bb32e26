package directorysvc

import (
	"context"
	"errors"
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

// ReviewService là cấu trúc chứa các phương thức liên quan đến review trong directory
type ReviewService struct {
	*basesvc.BaseServiceMongoImpl[models.Review]
}

// NewReviewService tạo mới ReviewService từ collection đã đăng ký
func NewReviewService() (*ReviewService, error) {
	collection, exists := global.RegistryCollections.Get(global.MongoDB_ColNames.Reviews)
	if !exists {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Reviews, common.ErrNotFound)
	}

	return &ReviewService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Review](collection),
	}, nil
}

// CountLiveByOrg đếm số review "live" (pending trở lên, không tính rejected) của một organization.
// Generator dùng số này để so với cap.
func (s *ReviewService) CountLiveByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"organizationId": orgID,
		"status":         bson.M{"$ne": models.ReviewStatusRejected},
	}
	return s.CountDocuments(ctx, filter)
}

// PendingReviewFilter dựng filter cho vòng quét moderation. Review đã skip do lỗi ghi
// trong run hiện tại bị loại khỏi filter để không bị đọc lại và đếm trùng trong cùng run —
// chúng vẫn pending và sẽ được run sau xử lý.
func PendingReviewFilter(exclude []primitive.ObjectID) bson.M {
	filter := bson.M{"status": models.ReviewStatusPendingValidation}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	return filter
}

// FindPendingPage lấy một trang review đang pending_validation, sort ổn định theo createdAt,
// bỏ qua các review trong danh sách exclude
func (s *ReviewService) FindPendingPage(ctx context.Context, page, limit int64, exclude []primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	result, err := s.FindWithPagination(ctx, PendingReviewFilter(exclude), page, limit, opts)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// FindDueApproved lấy tối đa limit review approved đã đến hạn publish (publishedAt <= now)
func (s *ReviewService) FindDueApproved(ctx context.Context, now int64, limit int64) ([]models.Review, error) {
	filter := bson.M{
		"status": models.ReviewStatusApproved,
		"publishedAt": bson.M{
			"$gt":  0,
			"$lte": now,
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "publishedAt", Value: 1}}).
		SetLimit(limit)

	return s.Find(ctx, filter, opts)
}

// FindUnscheduledApproved lấy tối đa limit review approved chưa được lên lịch,
// tùy chọn giới hạn theo danh sách organization
func (s *ReviewService) FindUnscheduledApproved(ctx context.Context, orgIDs []primitive.ObjectID, limit int64) ([]models.Review, error) {
	filter := bson.M{
		"status": models.ReviewStatusApproved,
		"$or": []bson.M{
			{"publishedAt": bson.M{"$exists": false}},
			{"publishedAt": 0},
		},
	}
	if len(orgIDs) > 0 {
		filter["organizationId"] = bson.M{"$in": orgIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit)

	return s.Find(ctx, filter, opts)
}

// CountScheduledAhead đếm số review approved có publishedAt trong tương lai
// (buffer lịch hiện có, dùng cho auto-throttle)
func (s *ReviewService) CountScheduledAhead(ctx context.Context, now int64) (int64, error) {
	filter := bson.M{
		"status":      models.ReviewStatusApproved,
		"publishedAt": bson.M{"$gt": now},
	}
	return s.CountDocuments(ctx, filter)
}

// LatestPublishAt trả về publishedAt lớn nhất trong các review approved hoặc published
// đã có lịch. Trả về 0 nếu chưa có review nào có lịch.
func (s *ReviewService) LatestPublishAt(ctx context.Context) (int64, error) {
	filter := bson.M{
		"status":      bson.M{"$in": []models.ReviewStatus{models.ReviewStatusApproved, models.ReviewStatusPublished}},
		"publishedAt": bson.M{"$gt": 0},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "publishedAt", Value: -1}})

	review, err := s.FindOne(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return review.PublishedAt, nil
}

// SetStatus chuyển trạng thái review theo bảng transition; chuyển không hợp lệ trả về lỗi
// ngay tại service thay vì ghi bừa vào store. reason chỉ được ghi khi chuyển sang rejected.
func (s *ReviewService) SetStatus(ctx context.Context, review *models.Review, to models.ReviewStatus, reason string) error {
	if !models.CanTransition(review.Status, to) {
		return fmt.Errorf("chuyển trạng thái %s -> %s không hợp lệ: %w", review.Status, to, common.ErrInvalidState)
	}

	set := bson.M{
		"status":    to,
		"updatedAt": time.Now().UnixMilli(),
	}
	if to == models.ReviewStatusRejected && reason != "" {
		set["rejectReason"] = reason
	}

	result, err := s.Collection().UpdateOne(ctx, bson.M{"_id": review.ID, "status": review.Status}, bson.M{"$set": set})
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 {
		// Review đã bị run khác đổi trạng thái trước
		return common.ErrNotFound
	}

	review.Status = to
	return nil
}

// Schedule gán publishedAt cho một review approved (status giữ nguyên approved)
func (s *ReviewService) Schedule(ctx context.Context, review *models.Review, publishAt int64) error {
	if review.Status != models.ReviewStatusApproved {
		return fmt.Errorf("chỉ lên lịch được review approved, hiện tại %s: %w", review.Status, common.ErrInvalidState)
	}

	update := bson.M{
		"$set": bson.M{
			"publishedAt": publishAt,
			"updatedAt":   time.Now().UnixMilli(),
		},
	}

	result, err := s.Collection().UpdateOne(ctx, bson.M{"_id": review.ID, "status": models.ReviewStatusApproved}, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}

	review.PublishedAt = publishAt
	return nil
}
