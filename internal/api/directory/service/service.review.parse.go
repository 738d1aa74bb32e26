package directorysvc

import (
	"encoding/json"
	"math"

	"review_factory/internal/api/directory/models"
	"review_factory/internal/textgen"
	"review_factory/internal/utility"
)

// CoherenceTolerance là độ lệch tối đa cho phép giữa overall rating và mean của 7 rating thành phần
const CoherenceTolerance = 1.5

// generatedReview là payload JSON mà provider được yêu cầu trả về
type generatedReview struct {
	OverallRating  int                    `json:"overallRating"`
	Ratings        models.RatingBreakdown `json:"ratings"`
	Likes          string                 `json:"likes"`
	Dislikes       string                 `json:"dislikes"`
	Content        string                 `json:"content"`
	Designation    string                 `json:"designation"`
	Department     string                 `json:"department"`
	EmploymentType string                 `json:"employmentType"`
}

// ParseGeneratedReview parse text của provider thành draft Review.
// Lỗi structural parse trả về dạng retryable vì regenerate là cách sửa duy nhất.
func ParseGeneratedReview(raw string, persona Persona, model string, tokensUsed int) (*models.Review, error) {
	jsonStr := utility.ExtractJSONObject(raw)
	if jsonStr == "" {
		return nil, textgen.NewParseError("Không tìm thấy JSON object trong response của provider", nil)
	}

	var parsed generatedReview
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, textgen.NewParseError("JSON của provider không đúng schema review", err)
	}

	review := &models.Review{
		Status:         models.ReviewStatusPendingValidation,
		OverallRating:  parsed.OverallRating,
		Ratings:        parsed.Ratings,
		Likes:          parsed.Likes,
		Dislikes:       parsed.Dislikes,
		Content:        parsed.Content,
		Designation:    parsed.Designation,
		Department:     parsed.Department,
		EmploymentType: parsed.EmploymentType,
		IsAnonymous:    true,
		PersonaRole:    persona.Role,
		Sentiment:      persona.Sentiment,
		Model:          model,
		TokensUsed:     tokensUsed,
	}

	// Persona không trả designation thì lấy role của persona
	if review.Designation == "" {
		review.Designation = persona.Role
	}
	if review.Department == "" {
		review.Department = persona.Department
	}
	if review.EmploymentType == "" {
		review.EmploymentType = "Full Time"
	}

	return review, nil
}

// RepairCoherence ghi đè overall rating bằng round(clamp(mean, 1, 5)) nếu lệch
// quá tolerance so với mean của 7 rating thành phần. Trả về true nếu có sửa.
func RepairCoherence(review *models.Review) bool {
	mean := review.Ratings.Mean()
	if math.Abs(float64(review.OverallRating)-mean) <= CoherenceTolerance {
		return false
	}

	repaired := math.Round(math.Min(5, math.Max(1, mean)))
	review.OverallRating = int(repaired)
	return true
}
