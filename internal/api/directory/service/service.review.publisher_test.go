package directorysvc

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"review_factory/internal/api/directory/models"
)

// makeQueues dựng các queue review theo kích thước cho trước, mỗi queue một org
func makeQueues(sizes ...int) [][]*models.Review {
	queues := make([][]*models.Review, 0, len(sizes))
	for _, size := range sizes {
		orgID := primitive.NewObjectID()
		queue := make([]*models.Review, 0, size)
		for i := 0; i < size; i++ {
			queue = append(queue, &models.Review{
				ID:             primitive.NewObjectID(),
				OrganizationID: orgID,
				Status:         models.ReviewStatusApproved,
			})
		}
		queues = append(queues, queue)
	}
	return queues
}

// countPerQueue đếm số review được chọn từ mỗi queue
func countPerQueue(queues [][]*models.Review, selected []*models.Review) []int {
	counts := make([]int, len(queues))
	for _, review := range selected {
		for i, queue := range queues {
			if len(queue) > 0 && queue[0].OrganizationID == review.OrganizationID {
				counts[i]++
			}
		}
	}
	return counts
}

// Queue [5,1,3] lấy 4 phần tử phải cho [2,1,1]: không org nào đóng góp
// phần tử thứ hai khi còn org khác chưa đóng góp phần tử đầu
func TestRoundRobinSelect_Fairness(t *testing.T) {
	queues := makeQueues(5, 1, 3)
	selected := RoundRobinSelect(queues, 4)

	assert.Len(t, selected, 4)
	assert.Equal(t, []int{2, 1, 1}, countPerQueue(queues, selected))
}

func TestRoundRobinSelect_SkipsExhaustedQueues(t *testing.T) {
	queues := makeQueues(5, 1, 3)
	selected := RoundRobinSelect(queues, 8)

	assert.Len(t, selected, 8)
	// Queue giữa cạn sau 1 phần tử, hai queue còn lại chia phần còn lại
	assert.Equal(t, []int{4, 1, 3}, countPerQueue(queues, selected))
}

func TestRoundRobinSelect_TakeMoreThanPool(t *testing.T) {
	queues := makeQueues(2, 1)
	selected := RoundRobinSelect(queues, 10)
	assert.Len(t, selected, 3)
}

func TestRoundRobinSelect_Empty(t *testing.T) {
	assert.Empty(t, RoundRobinSelect(nil, 5))
	assert.Empty(t, RoundRobinSelect(makeQueues(0, 0), 5))
}

// Lịch luôn tăng nghiêm ngặt, mốc đầu tiên luôn sau base time,
// khoảng cách giữa hai mốc liên tiếp trong [12h, 36h)
func TestBuildSchedule_MonotonicAndStaggered(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	baseTime := time.Now().UnixMilli()

	schedule := BuildSchedule(20, baseTime, rng)
	assert.Len(t, schedule, 20)

	minGap := int64(StaggerMinHours) * int64(time.Hour/time.Millisecond)
	maxGap := int64(StaggerMaxHours) * int64(time.Hour/time.Millisecond)

	prev := baseTime
	for i, at := range schedule {
		gap := at - prev
		assert.Greater(t, at, prev, "mốc %d không tăng nghiêm ngặt", i)
		assert.GreaterOrEqual(t, gap, minGap, "mốc %d cách mốc trước dưới %dh", i, StaggerMinHours)
		assert.Less(t, gap, maxGap, "mốc %d cách mốc trước từ %dh trở lên", i, StaggerMaxHours)
		prev = at
	}
}

func TestBuildSchedule_ExtendsBaseTime(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Base time trong tương lai xa: lịch mới phải nối tiếp sau đó
	futureBase := time.Now().Add(72 * time.Hour).UnixMilli()
	schedule := BuildSchedule(3, futureBase, rng)
	assert.Greater(t, schedule[0], futureBase)
}

func TestIsDueForPublish(t *testing.T) {
	now := time.Now().UnixMilli()

	due := &models.Review{Status: models.ReviewStatusApproved, PublishedAt: now - 1000}
	assert.True(t, IsDueForPublish(due, now))

	// Đến hạn đúng thời điểm now cũng due
	atNow := &models.Review{Status: models.ReviewStatusApproved, PublishedAt: now}
	assert.True(t, IsDueForPublish(atNow, now))

	future := &models.Review{Status: models.ReviewStatusApproved, PublishedAt: now + 1000}
	assert.False(t, IsDueForPublish(future, now))

	unscheduled := &models.Review{Status: models.ReviewStatusApproved, PublishedAt: 0}
	assert.False(t, IsDueForPublish(unscheduled, now))

	rejected := &models.Review{Status: models.ReviewStatusRejected, PublishedAt: now - 1000}
	assert.False(t, IsDueForPublish(rejected, now))
}

// Chạy lại phase publish ngay sau khi flip thành công: review đã published
// không bao giờ due lại, nên run thứ hai không có review mới cho 0 flip
func TestIsDueForPublish_PublishedNeverDueAgain(t *testing.T) {
	now := time.Now().UnixMilli()

	review := &models.Review{Status: models.ReviewStatusApproved, PublishedAt: now - 1000}
	assert.True(t, IsDueForPublish(review, now))

	review.Status = models.ReviewStatusPublished
	assert.False(t, IsDueForPublish(review, now))
	assert.False(t, IsDueForPublish(review, now+int64(time.Hour/time.Millisecond)))
}

// Backlog 10 lịch tương lai (>= ngưỡng 7) thì phase lên lịch phải no-op
func TestShouldThrottle(t *testing.T) {
	assert.True(t, ShouldThrottle(10))
	assert.True(t, ShouldThrottle(ScheduleRunwayThreshold))
	assert.False(t, ShouldThrottle(ScheduleRunwayThreshold-1))
	assert.False(t, ShouldThrottle(0))
}

func TestGroupByOrganization_PreservesOrder(t *testing.T) {
	orgA := primitive.NewObjectID()
	orgB := primitive.NewObjectID()

	pool := []models.Review{
		{ID: primitive.NewObjectID(), OrganizationID: orgA},
		{ID: primitive.NewObjectID(), OrganizationID: orgB},
		{ID: primitive.NewObjectID(), OrganizationID: orgA},
	}

	queues := groupByOrganization(pool)
	assert.Len(t, queues, 2)
	assert.Equal(t, orgA, queues[0][0].OrganizationID)
	assert.Len(t, queues[0], 2)
	assert.Equal(t, orgB, queues[1][0].OrganizationID)
	assert.Len(t, queues[1], 1)
}
