package global

import (
	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("rating", validateRating)
	_ = Validate.RegisterValidation("review_status", validateReviewStatus)
}

// validateRating kiểm tra rating nằm trong thang 1-5
func validateRating(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 1 && v <= 5
}

// validateReviewStatus kiểm tra status thuộc lifecycle của review
func validateReviewStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending_validation", "approved", "rejected", "published":
		return true
	}
	return false
}
