package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationStatus định nghĩa các trạng thái publish của organization
const (
	OrganizationStatusDraft     = "draft"     // Chưa có review nào được publish
	OrganizationStatusPublished = "published" // Đã có ít nhất 1 review published
)

// Organization đại diện cho một tổ chức trong directory.
// Collection: directory_organizations
// Pipeline chỉ đọc metadata và flip status draft -> published; schema thuộc về hệ thống seed.
type Organization struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của organization

	// ===== BASIC INFO =====
	Name     string `json:"name" bson:"name"`                               // Tên tổ chức
	Slug     string `json:"slug,omitempty" bson:"slug,omitempty"`           // Slug định danh (dùng cho CLI targeting)
	Industry string `json:"industry,omitempty" bson:"industry,omitempty"`   // Ngành nghề (dùng trong facts prompt)

	// ===== SIZE =====
	// Mô tả quy mô nhân sự dạng tự do: "51-100", "10,000+", "startup", "unicorn", "MNC", ...
	// Quota policy parse chuỗi này để tính cap.
	EmployeeCount string `json:"employeeCount,omitempty" bson:"employeeCount,omitempty"`

	// ===== LIFECYCLE =====
	Status string `json:"status" bson:"status" index:"single:1"` // Trạng thái: draft, published

	// ===== STATS =====
	ReviewCount int `json:"reviewCount,omitempty" bson:"reviewCount,omitempty"` // Số review đã published

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"` // Thời gian cập nhật
}
