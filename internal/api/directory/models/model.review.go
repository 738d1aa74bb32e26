package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewStatus định nghĩa các trạng thái trong lifecycle của review
type ReviewStatus string

const (
	ReviewStatusPendingValidation ReviewStatus = "pending_validation" // Vừa generate, chờ moderation
	ReviewStatusApproved          ReviewStatus = "approved"           // Đã qua moderation, chờ lên lịch / đến hạn
	ReviewStatusRejected          ReviewStatus = "rejected"           // Moderation loại (terminal)
	ReviewStatusPublished         ReviewStatus = "published"          // Đã publish (terminal)
)

// reviewTransitions là bảng chuyển trạng thái hợp lệ.
// approved -> approved cho phép gán publishedAt mà không đổi trạng thái.
var reviewTransitions = map[ReviewStatus][]ReviewStatus{
	ReviewStatusPendingValidation: {ReviewStatusApproved, ReviewStatusRejected},
	ReviewStatusApproved:          {ReviewStatusApproved, ReviewStatusPublished},
	ReviewStatusRejected:          {},
	ReviewStatusPublished:         {},
}

// IsValid kiểm tra status có thuộc lifecycle không
func (s ReviewStatus) IsValid() bool {
	_, ok := reviewTransitions[s]
	return ok
}

// CanTransition kiểm tra chuyển trạng thái from -> to có hợp lệ theo bảng không
func CanTransition(from, to ReviewStatus) bool {
	for _, next := range reviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RatingBreakdown chứa 7 rating thành phần của review, thang 1-5
type RatingBreakdown struct {
	WorkLifeBalance  int `json:"workLifeBalance" bson:"workLifeBalance" validate:"rating"`   // Cân bằng công việc - cuộc sống
	SalaryBenefits   int `json:"salaryBenefits" bson:"salaryBenefits" validate:"rating"`     // Lương thưởng
	Promotions       int `json:"promotions" bson:"promotions" validate:"rating"`             // Cơ hội thăng tiến
	JobSecurity      int `json:"jobSecurity" bson:"jobSecurity" validate:"rating"`           // Độ ổn định công việc
	SkillDevelopment int `json:"skillDevelopment" bson:"skillDevelopment" validate:"rating"` // Phát triển kỹ năng
	WorkSatisfaction int `json:"workSatisfaction" bson:"workSatisfaction" validate:"rating"` // Mức độ hài lòng
	CompanyCulture   int `json:"companyCulture" bson:"companyCulture" validate:"rating"`     // Văn hóa công ty
}

// Values trả về 7 rating thành phần dưới dạng slice (dùng để tính mean)
func (r RatingBreakdown) Values() []int {
	return []int{
		r.WorkLifeBalance,
		r.SalaryBenefits,
		r.Promotions,
		r.JobSecurity,
		r.SkillDevelopment,
		r.WorkSatisfaction,
		r.CompanyCulture,
	}
}

// Mean trả về trung bình cộng của 7 rating thành phần
func (r RatingBreakdown) Mean() float64 {
	values := r.Values()
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Review đại diện cho một review sinh tự động cho organization trong directory.
// Collection: directory_reviews
type Review struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của review

	// ===== REFERENCES =====
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"` // ID của organization sở hữu review

	// ===== LIFECYCLE =====
	Status ReviewStatus `json:"status" bson:"status" index:"single:1" validate:"review_status"` // Trạng thái: pending_validation, approved, rejected, published

	// ===== RATINGS =====
	OverallRating int             `json:"overallRating" bson:"overallRating" validate:"rating"` // Rating tổng, thang 1-5
	Ratings       RatingBreakdown `json:"ratings" bson:"ratings"`                               // 7 rating thành phần

	// ===== CONTENT =====
	Likes    string `json:"likes" bson:"likes" validate:"required,min=50,max=2000"`      // Điểm thích
	Dislikes string `json:"dislikes" bson:"dislikes" validate:"required,min=50,max=2000"` // Điểm không thích
	Content  string `json:"content" bson:"content" validate:"required,min=50,max=1500"`   // Nội dung review

	// ===== CLASSIFICATION =====
	Designation    string `json:"designation,omitempty" bson:"designation,omitempty"`       // Chức danh của người review
	Department     string `json:"department,omitempty" bson:"department,omitempty"`         // Phòng ban
	EmploymentType string `json:"employmentType,omitempty" bson:"employmentType,omitempty"` // Loại hình (Full Time, ...)

	// ===== PROVENANCE =====
	IsAnonymous bool   `json:"isAnonymous" bson:"isAnonymous"`                         // Luôn true — không gắn identity
	PersonaRole string `json:"personaRole,omitempty" bson:"personaRole,omitempty"`     // Role của persona dùng để generate
	Sentiment   string `json:"sentiment,omitempty" bson:"sentiment,omitempty"`         // Sentiment label của persona
	Model       string `json:"model,omitempty" bson:"model,omitempty"`                 // Model đã generate review này
	TokensUsed  int    `json:"tokensUsed,omitempty" bson:"tokensUsed,omitempty"`       // Tổng token của lần generate

	// ===== MODERATION =====
	RejectReason string `json:"rejectReason,omitempty" bson:"rejectReason,omitempty"` // Lý do reject (nếu có)

	// ===== SCHEDULING =====
	PublishedAt int64 `json:"publishedAt,omitempty" bson:"publishedAt,omitempty" index:"single:1"` // Thời điểm publish (UnixMilli), 0 = chưa lên lịch

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty" index:"single:1"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`                  // Thời gian cập nhật
}
