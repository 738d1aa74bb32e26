package directorysvc

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"review_factory/internal/api/directory/models"
	"review_factory/internal/logger"
)

// Tham số lịch publish
const (
	ScheduleRunwayThreshold = 7   // Phase B bỏ qua khi buffer lịch tương lai đã >= ngưỡng này
	SchedulePoolLimit       = 200 // Số review approved chưa lên lịch lấy tối đa mỗi run
	StaggerMinHours         = 12  // Khoảng cách tối thiểu giữa hai lịch liên tiếp
	StaggerMaxHours         = 36  // Khoảng cách tối đa (exclusive)
)

// PublisherService flip review đến hạn sang published và lên lịch cho pool approved
type PublisherService struct {
	orgService    *OrganizationService
	reviewService *ReviewService
	rng           *rand.Rand
}

// NewPublisherService tạo mới PublisherService
func NewPublisherService() (*PublisherService, error) {
	orgService, err := NewOrganizationService()
	if err != nil {
		return nil, err
	}
	reviewService, err := NewReviewService()
	if err != nil {
		return nil, err
	}

	return &PublisherService{
		orgService:    orgService,
		reviewService: reviewService,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ShouldThrottle quyết định Phase B có bị bỏ qua vì buffer lịch còn đủ không
func ShouldThrottle(scheduledAhead int64) bool {
	return scheduledAhead >= ScheduleRunwayThreshold
}

// IsDueForPublish kiểm tra review có đủ điều kiện flip sang published tại thời điểm now:
// đang approved và đã có lịch không muộn hơn now. published là terminal nên review
// đã flip không bao giờ due lại — chạy lại phase publish ngay sau một run thành công
// khi không có review mới đến hạn luôn cho 0 flip.
func IsDueForPublish(review *models.Review, now int64) bool {
	return review.Status == models.ReviewStatusApproved &&
		review.PublishedAt > 0 &&
		review.PublishedAt <= now
}

// RoundRobinSelect chọn take phần tử từ các queue theo vòng xoay:
// mỗi vòng lấy một phần tử từ queue kế tiếp còn hàng, queue cạn bị loại khỏi vòng.
// Không queue nào đóng góp phần tử thứ hai khi còn queue khác chưa đóng góp phần tử đầu.
func RoundRobinSelect(queues [][]*models.Review, take int) []*models.Review {
	selected := make([]*models.Review, 0, take)
	offsets := make([]int, len(queues))

	for len(selected) < take {
		progressed := false
		for i := range queues {
			if len(selected) >= take {
				break
			}
			if offsets[i] >= len(queues[i]) {
				continue
			}
			selected = append(selected, queues[i][offsets[i]])
			offsets[i]++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return selected
}

// BuildSchedule sinh n mốc thời gian publish (UnixMilli) sau baseTime,
// mỗi mốc cách mốc trước một khoảng ngẫu nhiên trong [StaggerMinHours, StaggerMaxHours) giờ.
// Chuỗi trả về luôn tăng nghiêm ngặt và mốc đầu tiên luôn lớn hơn baseTime.
func BuildSchedule(n int, baseTime int64, rng *rand.Rand) []int64 {
	schedule := make([]int64, 0, n)
	clock := baseTime

	spanMs := int64(StaggerMaxHours-StaggerMinHours) * int64(time.Hour/time.Millisecond)
	minMs := int64(StaggerMinHours) * int64(time.Hour/time.Millisecond)

	for i := 0; i < n; i++ {
		clock += minMs + rng.Int63n(spanMs)
		schedule = append(schedule, clock)
	}
	return schedule
}

// Run chạy hai phase của publisher: flip review đến hạn rồi lên lịch pool approved
func (s *PublisherService) Run(ctx context.Context, opts RunOptions) (*PublisherSummary, error) {
	log := logger.GetAppLogger()
	start := time.Now()

	summary := &PublisherSummary{Mode: runMode(opts.DryRun)}

	log.WithFields(logrus.Fields{
		"batchSize": opts.BatchSize,
		"mode":      summary.Mode,
	}).Info("📤 [PUBLISHER] Bắt đầu run")

	if err := s.publishDue(ctx, opts, summary); err != nil {
		return nil, err
	}
	if err := s.scheduleApproved(ctx, opts, summary); err != nil {
		return nil, err
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"flipped":   summary.Flipped,
		"scheduled": summary.Scheduled,
		"throttled": summary.Throttled,
		"failed":    summary.Failed,
	}).Info("📤 [PUBLISHER] Kết thúc run")

	return summary, nil
}

// publishDue (Phase A) flip các review approved đã đến hạn sang published
// và cascade trạng thái published cho organization lần publish đầu tiên.
// Lỗi store của một review chỉ skip review đó.
func (s *PublisherService) publishDue(ctx context.Context, opts RunOptions, summary *PublisherSummary) error {
	log := logger.GetAppLogger()
	now := time.Now().UnixMilli()

	due, err := s.reviewService.FindDueApproved(ctx, now, int64(opts.BatchSize))
	if err != nil {
		return err
	}

	for i := range due {
		review := &due[i]

		// Query đã lọc theo đúng điều kiện này; check lại tại chỗ để predicate
		// due là một định nghĩa duy nhất cho cả query lẫn vòng xử lý
		if !IsDueForPublish(review, now) {
			continue
		}

		if opts.DryRun {
			summary.Flipped++
			if opts.Verbose {
				log.WithField("id", review.ID.Hex()).Info("📤 [PUBLISHER] (dry-run) Sẽ flip sang published")
			}
			continue
		}

		if err := s.reviewService.SetStatus(ctx, review, models.ReviewStatusPublished, ""); err != nil {
			summary.Failed++
			log.WithError(err).WithField("id", review.ID.Hex()).Error("📤 [PUBLISHER] Không flip được review")
			continue
		}
		summary.Flipped++

		flipped, err := s.orgService.MarkPublished(ctx, review.OrganizationID)
		if err != nil {
			// Review đã published thành công, org flip lại sau cũng được
			log.WithError(err).WithField("orgId", review.OrganizationID.Hex()).Error("📤 [PUBLISHER] Không flip được organization")
		} else if flipped {
			summary.OrgsFirst++
		}

		if err := s.orgService.IncReviewCount(ctx, review.OrganizationID, 1); err != nil {
			log.WithError(err).WithField("orgId", review.OrganizationID.Hex()).Error("📤 [PUBLISHER] Không cập nhật được reviewCount")
		}

		if opts.Verbose {
			log.WithFields(logrus.Fields{
				"id":    review.ID.Hex(),
				"orgId": review.OrganizationID.Hex(),
			}).Info("📤 [PUBLISHER] Đã publish review")
		}
	}

	return nil
}

// scheduleApproved (Phase B) gán publishedAt cho pool review approved chưa có lịch,
// chọn công bằng theo round-robin giữa các organization
func (s *PublisherService) scheduleApproved(ctx context.Context, opts RunOptions, summary *PublisherSummary) error {
	log := logger.GetAppLogger()
	now := time.Now().UnixMilli()

	// Auto-throttle: buffer lịch tương lai còn đủ thì không lên lịch thêm
	scheduledAhead, err := s.reviewService.CountScheduledAhead(ctx, now)
	if err != nil {
		return err
	}
	if ShouldThrottle(scheduledAhead) {
		summary.Throttled = true
		log.WithField("scheduledAhead", scheduledAhead).Info("📤 [PUBLISHER] Buffer lịch còn đủ, bỏ qua phase lên lịch")
		return nil
	}

	var orgIDs []primitive.ObjectID
	if len(opts.Targets) > 0 {
		orgs, err := s.orgService.ResolveTargets(ctx, opts.Targets)
		if err != nil {
			return err
		}
		for _, org := range orgs {
			orgIDs = append(orgIDs, org.ID)
		}
	}

	pool, err := s.reviewService.FindUnscheduledApproved(ctx, orgIDs, SchedulePoolLimit)
	if err != nil {
		return err
	}
	if len(pool) == 0 {
		return nil
	}

	// Gom pool theo organization, giữ thứ tự xuất hiện để round-robin ổn định
	queues := groupByOrganization(pool)

	take := opts.BatchSize
	if take > len(pool) {
		take = len(pool)
	}
	selected := RoundRobinSelect(queues, take)

	// Base time: lịch mới luôn nối dài timeline hiện có, không bao giờ chen lên trước
	baseTime, err := s.reviewService.LatestPublishAt(ctx)
	if err != nil {
		return err
	}
	if baseTime < now {
		baseTime = now
	}

	schedule := BuildSchedule(len(selected), baseTime, s.rng)

	for i, review := range selected {
		if opts.DryRun {
			summary.Scheduled++
			if opts.Verbose {
				log.WithFields(logrus.Fields{
					"id":          review.ID.Hex(),
					"publishedAt": schedule[i],
				}).Info("📤 [PUBLISHER] (dry-run) Sẽ lên lịch")
			}
			continue
		}

		if err := s.reviewService.Schedule(ctx, review, schedule[i]); err != nil {
			summary.Failed++
			log.WithError(err).WithField("id", review.ID.Hex()).Error("📤 [PUBLISHER] Không lên lịch được review")
			continue
		}
		summary.Scheduled++

		if opts.Verbose {
			log.WithFields(logrus.Fields{
				"id":          review.ID.Hex(),
				"publishedAt": time.UnixMilli(schedule[i]).Format(time.RFC3339),
			}).Info("📤 [PUBLISHER] Đã lên lịch review")
		}
	}

	return nil
}

// groupByOrganization gom review theo organization, giữ thứ tự xuất hiện của org trong pool
func groupByOrganization(pool []models.Review) [][]*models.Review {
	order := []primitive.ObjectID{}
	byOrg := map[primitive.ObjectID][]*models.Review{}

	for i := range pool {
		orgID := pool[i].OrganizationID
		if _, seen := byOrg[orgID]; !seen {
			order = append(order, orgID)
		}
		byOrg[orgID] = append(byOrg[orgID], &pool[i])
	}

	queues := make([][]*models.Review, 0, len(order))
	for _, orgID := range order {
		queues = append(queues, byOrg[orgID])
	}
	return queues
}
