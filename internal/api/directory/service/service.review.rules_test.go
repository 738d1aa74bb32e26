package directorysvc

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"review_factory/internal/api/directory/models"
)

// validReview dựng một review qua được toàn bộ battery rule
func validReview() *models.Review {
	return &models.Review{
		Status:        models.ReviewStatusPendingValidation,
		OverallRating: 3,
		Ratings: models.RatingBreakdown{
			WorkLifeBalance: 3, SalaryBenefits: 3, Promotions: 3, JobSecurity: 3,
			SkillDevelopment: 3, WorkSatisfaction: 3, CompanyCulture: 3,
		},
		Likes:    "The team is friendly and the projects are interesting with modern tooling and decent pay for this market.",
		Dislikes: "Deadlines can get stressful during release season, internal communication between departments could improve a lot.",
		Content:  "I have worked here for around two years now and learned quite a lot, though some internal processes could definitely be smoother.",
	}
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, JaccardSimilarity("", ""))
	assert.Equal(t, 0.0, JaccardSimilarity("hello world", ""))
	assert.Equal(t, 0.0, JaccardSimilarity("", "hello world"))
	assert.Equal(t, 1.0, JaccardSimilarity("Hello World", "world hello"))
	assert.Equal(t, 0.0, JaccardSimilarity("one two", "three four"))

	// {a b c} vs {b c d}: giao 2, hợp 4
	assert.InDelta(t, 0.5, JaccardSimilarity("a b c", "b c d"), 1e-9)
}

func TestEvaluateReview_ValidPasses(t *testing.T) {
	result := EvaluateReview(validReview())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
}

func TestEvaluateReview_LengthBounds(t *testing.T) {
	review := validReview()
	review.Likes = "ngắn quá"
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "likes_too_short")

	review = validReview()
	review.Content = strings.Repeat("x", ContentMaxLen+1)
	result = EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "content_too_long")

	review = validReview()
	review.Dislikes = "   "
	result = EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "dislikes_missing")
}

// Giới hạn độ dài đếm theo ký tự, không theo byte — khớp với validator min/max
// trên struct tag khi text chứa ký tự nhiều byte
func TestEvaluateReview_LengthCountsRunes(t *testing.T) {
	// 45 ký tự nhưng 135 byte: vẫn phải là quá ngắn
	review := validReview()
	review.Likes = strings.Repeat("ố", 45)
	assert.Greater(t, len(review.Likes), LikesDislikesMinLen)
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "likes_too_short")

	// Dưới 1500 ký tự nhưng trên 1500 byte: không được coi là quá dài
	review = validReview()
	review.Content = strings.TrimSpace(strings.Repeat("môi trường làm việc thân thiện và cởi mở ", 35))
	assert.LessOrEqual(t, utf8.RuneCountInString(review.Content), ContentMaxLen)
	assert.Greater(t, len(review.Content), ContentMaxLen)
	assert.True(t, EvaluateReview(review).Valid)
}

func TestEvaluateReview_RatingRange(t *testing.T) {
	review := validReview()
	review.OverallRating = 0
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "overall_rating_out_of_range")

	review = validReview()
	review.OverallRating = 6
	assert.False(t, EvaluateReview(review).Valid)
}

func TestEvaluateReview_Coherence(t *testing.T) {
	review := validReview()
	review.OverallRating = 5
	review.Ratings = models.RatingBreakdown{
		WorkLifeBalance: 1, SalaryBenefits: 1, Promotions: 1, JobSecurity: 1,
		SkillDevelopment: 1, WorkSatisfaction: 1, CompanyCulture: 1,
	}
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "rating_incoherent")
}

// Likes và dislikes từ cùng một tập 40 từ -> similarity 1.0 -> reject
func TestEvaluateReview_IdenticalWordSetsRejected(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("word ", 40))

	review := validReview()
	review.Likes = words
	review.Dislikes = words

	assert.Equal(t, 1.0, JaccardSimilarity(review.Likes, review.Dislikes))

	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "too_similar")
}

// Similarity trong khoảng (0.70, 0.90] chỉ cảnh báo, không reject
func TestEvaluateReview_SimilarityWarnBand(t *testing.T) {
	review := validReview()
	review.Likes = "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	review.Dislikes = "alpha bravo charlie delta echo foxtrot golf hotel india kilo"

	similarity := JaccardSimilarity(review.Likes, review.Dislikes)
	assert.Greater(t, similarity, SimilarityWarnThreshold)
	assert.LessOrEqual(t, similarity, SimilarityRejectThreshold)

	result := EvaluateReview(review)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestEvaluateReview_BlocklistedPhrase(t *testing.T) {
	review := validReview()
	review.Content = "As an AI I think this is a great company to work for and everyone should definitely join right away."
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "blocklisted_phrase")
}

func TestEvaluateReview_RedFlagPatterns(t *testing.T) {
	review := validReview()
	review.Content = "The office is really really really nice and the canteen food is good enough for the price we pay daily."
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "red_flag_pattern")
}

// Pattern lạm dụng "utilize" phải bắt được cả khi các lần xuất hiện nằm trên nhiều dòng
func TestEvaluateReview_UtilizeOveruseAcrossLines(t *testing.T) {
	review := validReview()
	review.Content = "We utilize many modern tools here.\nThey utilize even more tools daily.\nI utilize everything I can find to finish my tasks on time."
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "red_flag_pattern")
}

func TestEvaluateReview_StructuralArtifacts(t *testing.T) {
	review := validReview()
	review.Likes = `{"likes": "The team is friendly and the office location is quite convenient for commuting every single day"`
	result := EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "structural_artifact")

	review = validReview()
	review.Content = "Good place to learn new things overall but salary reviews are slow } and promotions take forever to happen here."
	result = EvaluateReview(review)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "structural_artifact")
}
