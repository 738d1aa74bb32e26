package directorysvc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"review_factory/internal/api/directory/models"
	"review_factory/internal/logger"
)

// ModerationPageSize là kích thước trang cố định của vòng quét pending
const ModerationPageSize = 50

// ModerationService quét các review pending_validation và chuyển sang approved/rejected
type ModerationService struct {
	reviewService *ReviewService
}

// NewModerationService tạo mới ModerationService
func NewModerationService() (*ModerationService, error) {
	reviewService, err := NewReviewService()
	if err != nil {
		return nil, err
	}
	return &ModerationService{reviewService: reviewService}, nil
}

// Run quét toàn bộ review pending theo trang cố định cho đến khi hết
// (hoặc chạm trần opts.Limit). Lỗi ghi một review chỉ skip review đó,
// review vẫn pending để run sau xử lý lại.
func (s *ModerationService) Run(ctx context.Context, opts RunOptions) (*ModerationSummary, error) {
	log := logger.GetAppLogger()
	start := time.Now()

	summary := &ModerationSummary{
		Mode:    runMode(opts.DryRun),
		Reasons: map[string]int{},
	}

	log.WithFields(logrus.Fields{
		"limit": opts.Limit,
		"mode":  summary.Mode,
	}).Info("🧹 [MODERATION] Bắt đầu run")

	// Trang live luôn đọc lại trang 1: review đã xử lý rời khỏi trạng thái pending
	// nên tập kết quả tự trôi về đầu. Review skip do lỗi ghi được loại khỏi filter
	// của các lần đọc sau để mỗi review chỉ được đánh giá và đếm đúng một lần mỗi run.
	// Dry-run không ghi gì nên phải tự tăng trang.
	page := int64(1)
	var skippedIDs []primitive.ObjectID
	for {
		reviews, err := s.reviewService.FindPendingPage(ctx, page, ModerationPageSize, skippedIDs)
		if err != nil {
			return nil, err
		}
		if len(reviews) == 0 {
			break
		}

		reachedLimit := false
		for i := range reviews {
			if opts.Limit > 0 && summary.Evaluated >= opts.Limit {
				reachedLimit = true
				break
			}
			if skipped := s.evaluateOne(ctx, &reviews[i], opts, summary); skipped {
				skippedIDs = append(skippedIDs, reviews[i].ID)
			}
		}
		if reachedLimit {
			break
		}

		if opts.DryRun {
			page++
		}
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"evaluated": summary.Evaluated,
		"approved":  summary.Approved,
		"rejected":  summary.Rejected,
		"skipped":   summary.Skipped,
	}).Info("🧹 [MODERATION] Kết thúc run")

	return summary, nil
}

// evaluateOne đánh giá và ghi kết quả cho một review.
// Trả về true nếu review bị skip do lỗi ghi (vẫn pending, chờ run sau).
func (s *ModerationService) evaluateOne(ctx context.Context, review *models.Review, opts RunOptions, summary *ModerationSummary) bool {
	log := logger.GetAppLogger()

	result := EvaluateReview(review)
	summary.Evaluated++

	for _, warning := range result.Warnings {
		log.WithFields(logrus.Fields{
			"id":      review.ID.Hex(),
			"warning": warning,
		}).Warn("🧹 [MODERATION] Cảnh báo chất lượng")
	}

	nextStatus := models.ReviewStatusApproved
	if !result.Valid {
		nextStatus = models.ReviewStatusRejected
		summary.Reasons[result.Reason]++
	}

	if opts.Verbose || (opts.ShowRejected && !result.Valid) {
		log.WithFields(logrus.Fields{
			"id":     review.ID.Hex(),
			"status": nextStatus,
			"reason": result.Reason,
		}).Info("🧹 [MODERATION] Kết quả đánh giá")
	}

	if opts.DryRun {
		if result.Valid {
			summary.Approved++
		} else {
			summary.Rejected++
		}
		return false
	}

	if err := s.reviewService.SetStatus(ctx, review, nextStatus, result.Reason); err != nil {
		// Ghi fail thì để nguyên pending cho run sau, không bao giờ drop lặng lẽ
		summary.Skipped++
		log.WithError(err).WithField("id", review.ID.Hex()).Error("🧹 [MODERATION] Không ghi được trạng thái, giữ nguyên pending")
		return true
	}

	if result.Valid {
		summary.Approved++
	} else {
		summary.Rejected++
	}
	return false
}
