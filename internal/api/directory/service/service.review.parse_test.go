package directorysvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"review_factory/internal/api/directory/models"
	"review_factory/internal/textgen"
)

var testPersona = Persona{
	Role:       "Software Engineer",
	Tenure:     "2 years",
	Sentiment:  "positive",
	Trait:      "thực tế",
	Department: "Engineering",
	Verbosity:  VerbosityMedium,
}

const validProviderJSON = `{
	"overallRating": 4,
	"ratings": {"workLifeBalance": 4, "salaryBenefits": 3, "promotions": 4, "jobSecurity": 4, "skillDevelopment": 5, "workSatisfaction": 4, "companyCulture": 4},
	"likes": "likes text",
	"dislikes": "dislikes text",
	"content": "content text",
	"designation": "Backend Developer",
	"department": "Platform",
	"employmentType": "Full Time"
}`

func TestParseGeneratedReview_PlainJSON(t *testing.T) {
	review, err := ParseGeneratedReview(validProviderJSON, testPersona, "gemini-1.5-flash", 321)
	assert.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPendingValidation, review.Status)
	assert.Equal(t, 4, review.OverallRating)
	assert.Equal(t, "Backend Developer", review.Designation)
	assert.Equal(t, "gemini-1.5-flash", review.Model)
	assert.Equal(t, 321, review.TokensUsed)
	assert.True(t, review.IsAnonymous)
	assert.Equal(t, testPersona.Role, review.PersonaRole)
	assert.Equal(t, testPersona.Sentiment, review.Sentiment)
}

// Model hay bọc JSON trong code fence kèm câu dẫn
func TestParseGeneratedReview_FencedWithPreamble(t *testing.T) {
	raw := "```json\n" + validProviderJSON + "\n```"
	review, err := ParseGeneratedReview(raw, testPersona, "gemini-1.5-flash", 0)
	assert.NoError(t, err)
	assert.Equal(t, 4, review.OverallRating)
}

func TestParseGeneratedReview_FallbackFields(t *testing.T) {
	raw := `{"overallRating": 5, "ratings": {"workLifeBalance": 5, "salaryBenefits": 5, "promotions": 4, "jobSecurity": 5, "skillDevelopment": 5, "workSatisfaction": 5, "companyCulture": 4}, "likes": "a", "dislikes": "b", "content": "c"}`
	review, err := ParseGeneratedReview(raw, testPersona, "m", 0)
	assert.NoError(t, err)
	// Field provider không trả thì lấy từ persona
	assert.Equal(t, testPersona.Role, review.Designation)
	assert.Equal(t, testPersona.Department, review.Department)
	assert.Equal(t, "Full Time", review.EmploymentType)
}

func TestParseGeneratedReview_NoJSONIsRetryable(t *testing.T) {
	_, err := ParseGeneratedReview("xin lỗi, tôi không thể giúp", testPersona, "m", 0)
	assert.Error(t, err)

	var pe *textgen.ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, textgen.KindParse, pe.Kind)
	assert.True(t, textgen.IsRetryable(err))
}

func TestParseGeneratedReview_MalformedJSONIsRetryable(t *testing.T) {
	_, err := ParseGeneratedReview(`{"overallRating": "bốn sao"}`, testPersona, "m", 0)
	assert.Error(t, err)
	assert.True(t, textgen.IsRetryable(err))
}

// Overall 5 với mean 2.0 phải bị ghi đè thành 2 trước khi validate
func TestRepairCoherence_Rewrites(t *testing.T) {
	review := &models.Review{
		OverallRating: 5,
		Ratings: models.RatingBreakdown{
			WorkLifeBalance: 2, SalaryBenefits: 2, Promotions: 2, JobSecurity: 2,
			SkillDevelopment: 2, WorkSatisfaction: 2, CompanyCulture: 2,
		},
	}
	repaired := RepairCoherence(review)
	assert.True(t, repaired)
	assert.Equal(t, 2, review.OverallRating)
}

func TestRepairCoherence_WithinToleranceUntouched(t *testing.T) {
	review := &models.Review{
		OverallRating: 4,
		Ratings: models.RatingBreakdown{
			WorkLifeBalance: 3, SalaryBenefits: 3, Promotions: 3, JobSecurity: 3,
			SkillDevelopment: 3, WorkSatisfaction: 3, CompanyCulture: 3,
		},
	}
	// |4 - 3.0| = 1.0 <= 1.5
	assert.False(t, RepairCoherence(review))
	assert.Equal(t, 4, review.OverallRating)
}

func TestRepairCoherence_ClampsToRange(t *testing.T) {
	review := &models.Review{
		OverallRating: 5,
		Ratings: models.RatingBreakdown{
			WorkLifeBalance: 1, SalaryBenefits: 1, Promotions: 1, JobSecurity: 1,
			SkillDevelopment: 1, WorkSatisfaction: 1, CompanyCulture: 1,
		},
	}
	assert.True(t, RepairCoherence(review))
	assert.Equal(t, 1, review.OverallRating)
}
