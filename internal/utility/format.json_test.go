package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	// JSON trần
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject(`{"a": 1}`))

	// Bọc trong code fence
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject("```\n{\"a\": 1}\n```"))

	// Có câu dẫn trước và sau
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject(`Đây là kết quả: {"a": 1} mong là đúng`))

	// Object lồng nhau: lấy từ '{' đầu đến '}' cuối
	assert.Equal(t, `{"a": {"b": 2}}`, ExtractJSONObject(`{"a": {"b": 2}}`))

	// Không có object nào
	assert.Equal(t, "", ExtractJSONObject("không có JSON ở đây"))
	assert.Equal(t, "", ExtractJSONObject(""))
	assert.Equal(t, "", ExtractJSONObject("}{"))
}

func TestMapToJSONAndBack(t *testing.T) {
	original := map[string]interface{}{"name": "test", "count": float64(3)}

	jsonStr, err := MapToJSON(original)
	assert.NoError(t, err)

	decoded, err := JSONToMap(jsonStr)
	assert.NoError(t, err)
	assert.Equal(t, original, decoded)
}
