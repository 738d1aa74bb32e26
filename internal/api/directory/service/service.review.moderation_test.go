package directorysvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"review_factory/internal/api/directory/models"
)

func TestPendingReviewFilter_NoExcludes(t *testing.T) {
	filter := PendingReviewFilter(nil)

	assert.Equal(t, models.ReviewStatusPendingValidation, filter["status"])
	_, hasID := filter["_id"]
	assert.False(t, hasID)
}

// Review skip do lỗi ghi phải bị loại khỏi các lần đọc trang sau trong cùng run:
// mỗi review chỉ được đánh giá và đếm vào summary đúng một lần
func TestPendingReviewFilter_ExcludesSkipped(t *testing.T) {
	skipped := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	filter := PendingReviewFilter(skipped)

	assert.Equal(t, models.ReviewStatusPendingValidation, filter["status"])
	assert.Equal(t, bson.M{"$nin": skipped}, filter["_id"])
}
