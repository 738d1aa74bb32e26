package directorysvc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultReviewCap là cap mặc định khi descriptor không có số nào
const DefaultReviewCap = 15

// capStep là một bậc trong bảng cap theo số nhân viên
type capStep struct {
	MaxEmployees int // Ngưỡng trên (inclusive)
	Cap          int // Cap tương ứng
}

// capSteps là bảng bậc thang tăng dần; trên 10000 tính theo tỷ lệ
var capSteps = []capStep{
	{MaxEmployees: 10, Cap: 2},
	{MaxEmployees: 25, Cap: 5},
	{MaxEmployees: 50, Cap: 10},
	{MaxEmployees: 100, Cap: 15},
	{MaxEmployees: 200, Cap: 25},
	{MaxEmployees: 500, Cap: 50},
	{MaxEmployees: 1000, Cap: 100},
	{MaxEmployees: 2500, Cap: 200},
	{MaxEmployees: 5000, Cap: 350},
	{MaxEmployees: 10000, Cap: 600},
}

var numberPattern = regexp.MustCompile(`\d+`)

// ReviewCapForEmployeeCount tính cap số review "live" (pending trở lên) cho một organization
// từ descriptor quy mô nhân sự dạng tự do. Hàm thuần: cùng input luôn cho cùng cap.
//
// Thứ tự rule, rule đầu tiên khớp sẽ thắng:
//  1. Chứa "startup" (và không chứa "unicorn") -> 10
//  2. Chứa "unicorn" -> 200
//  3. Chứa "mnc" hoặc "enterprise scale" -> 500
//  4. Lấy số lớn nhất trong descriptor (bỏ dấu phân cách hàng nghìn) rồi tra bảng bậc thang;
//     trên 10000 -> min(ceil(n * 0.06), 2000); không có số nào -> 15.
func ReviewCapForEmployeeCount(descriptor string) int {
	normalized := strings.ToLower(strings.TrimSpace(descriptor))

	if strings.Contains(normalized, "startup") && !strings.Contains(normalized, "unicorn") {
		return 10
	}
	if strings.Contains(normalized, "unicorn") {
		return 200
	}
	if strings.Contains(normalized, "mnc") || strings.Contains(normalized, "enterprise scale") {
		return 500
	}

	estimate := maxEmbeddedNumber(normalized)
	if estimate <= 0 {
		return DefaultReviewCap
	}

	for _, step := range capSteps {
		if estimate <= step.MaxEmployees {
			return step.Cap
		}
	}

	// Trên 10000: cap tỷ lệ 6%, trần 2000
	cap := int(math.Ceil(float64(estimate) * 0.06))
	if cap > 2000 {
		cap = 2000
	}
	return cap
}

// maxEmbeddedNumber lấy số nguyên lớn nhất trong chuỗi, bỏ dấu phân cách hàng nghìn.
// Trả về 0 nếu không có số nào.
func maxEmbeddedNumber(s string) int {
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")

	matches := numberPattern.FindAllString(cleaned, -1)
	max := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
