package directorysvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewCapForEmployeeCount_Markers(t *testing.T) {
	assert.Equal(t, 10, ReviewCapForEmployeeCount("Startup"))
	assert.Equal(t, 10, ReviewCapForEmployeeCount("early-stage startup, 30 people"))
	assert.Equal(t, 200, ReviewCapForEmployeeCount("unicorn"))
	// "unicorn" thắng "startup" khi cả hai cùng xuất hiện
	assert.Equal(t, 200, ReviewCapForEmployeeCount("startup unicorn"))
	assert.Equal(t, 500, ReviewCapForEmployeeCount("MNC"))
	assert.Equal(t, 500, ReviewCapForEmployeeCount("enterprise scale"))
}

func TestReviewCapForEmployeeCount_StepTable(t *testing.T) {
	cases := map[string]int{
		"5":      2,
		"10":     2,
		"11-25":  5,
		"26-50":  10,
		"51-100": 15,
		"200":    25,
		"500":    50,
		"1000":   100,
		"2500":   200,
		"5000":   350,
		"10000":  600,
	}
	for descriptor, expected := range cases {
		assert.Equal(t, expected, ReviewCapForEmployeeCount(descriptor), "descriptor %q", descriptor)
	}
}

func TestReviewCapForEmployeeCount_AboveTable(t *testing.T) {
	// Trên 10000: ceil(n * 0.06), trần 2000
	assert.Equal(t, 1200, ReviewCapForEmployeeCount("20,000 employees"))
	assert.Equal(t, 601, ReviewCapForEmployeeCount("10,001"))
	assert.Equal(t, 2000, ReviewCapForEmployeeCount("100,000+"))
}

func TestReviewCapForEmployeeCount_Default(t *testing.T) {
	assert.Equal(t, DefaultReviewCap, ReviewCapForEmployeeCount(""))
	assert.Equal(t, DefaultReviewCap, ReviewCapForEmployeeCount("không rõ quy mô"))
}

// Hàm thuần: cùng input luôn cho cùng cap, và cap không giảm khi estimate tăng
func TestReviewCapForEmployeeCount_PureAndMonotonic(t *testing.T) {
	assert.Equal(t, ReviewCapForEmployeeCount("500"), ReviewCapForEmployeeCount("500"))

	estimates := []string{"1", "10", "25", "50", "100", "200", "500", "1000", "2500", "5000", "10000", "20000", "50000"}
	prev := 0
	for _, e := range estimates {
		cap := ReviewCapForEmployeeCount(e)
		assert.GreaterOrEqual(t, cap, prev, "cap giảm tại estimate %s", e)
		prev = cap
	}
}

// Org còn 2 slot dưới cap thì batch 5 chỉ generate 2
func TestGenerationTarget_ClampedByCap(t *testing.T) {
	reviewCap := ReviewCapForEmployeeCount("26-50")
	assert.Equal(t, 10, reviewCap)

	assert.Equal(t, 2, GenerationTarget(5, reviewCap, 8, false))
	assert.Equal(t, 0, GenerationTarget(5, reviewCap, 10, false))
	assert.Equal(t, 0, GenerationTarget(5, reviewCap, 12, false))
	assert.Equal(t, 5, GenerationTarget(5, reviewCap, 0, false))
}

func TestGenerationTarget_Force(t *testing.T) {
	// Force bỏ qua cap gate hoàn toàn
	assert.Equal(t, 5, GenerationTarget(5, 10, 10, true))
	assert.Equal(t, 5, GenerationTarget(5, 2, 100, true))
}
