package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewStatus_IsValid(t *testing.T) {
	assert.True(t, ReviewStatusPendingValidation.IsValid())
	assert.True(t, ReviewStatusApproved.IsValid())
	assert.True(t, ReviewStatusRejected.IsValid())
	assert.True(t, ReviewStatusPublished.IsValid())
	assert.False(t, ReviewStatus("draft").IsValid())
	assert.False(t, ReviewStatus("").IsValid())
}

func TestCanTransition(t *testing.T) {
	// Các chuyển hợp lệ của lifecycle
	assert.True(t, CanTransition(ReviewStatusPendingValidation, ReviewStatusApproved))
	assert.True(t, CanTransition(ReviewStatusPendingValidation, ReviewStatusRejected))
	assert.True(t, CanTransition(ReviewStatusApproved, ReviewStatusPublished))
	// approved -> approved: gán lịch không đổi trạng thái
	assert.True(t, CanTransition(ReviewStatusApproved, ReviewStatusApproved))

	// rejected và published là terminal
	assert.False(t, CanTransition(ReviewStatusRejected, ReviewStatusApproved))
	assert.False(t, CanTransition(ReviewStatusRejected, ReviewStatusPendingValidation))
	assert.False(t, CanTransition(ReviewStatusPublished, ReviewStatusApproved))
	assert.False(t, CanTransition(ReviewStatusPublished, ReviewStatusPendingValidation))

	// Không đi tắt và không đi lùi
	assert.False(t, CanTransition(ReviewStatusPendingValidation, ReviewStatusPublished))
	assert.False(t, CanTransition(ReviewStatusApproved, ReviewStatusPendingValidation))
	assert.False(t, CanTransition(ReviewStatusApproved, ReviewStatusRejected))
}

func TestRatingBreakdown_Mean(t *testing.T) {
	r := RatingBreakdown{
		WorkLifeBalance: 2, SalaryBenefits: 2, Promotions: 2, JobSecurity: 2,
		SkillDevelopment: 2, WorkSatisfaction: 2, CompanyCulture: 2,
	}
	assert.Equal(t, 2.0, r.Mean())
	assert.Len(t, r.Values(), 7)

	r.CompanyCulture = 5
	// (2*6 + 5) / 7
	assert.InDelta(t, 17.0/7.0, r.Mean(), 1e-9)
}
