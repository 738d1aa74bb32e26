package utility

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MapToJSON chuyển đổi map thành chuỗi JSON
func MapToJSON(m map[string]interface{}) (string, error) {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("lỗi khi chuyển đổi map thành JSON: %v", err)
	}
	return string(jsonBytes), nil
}

// JSONToMap chuyển đổi chuỗi JSON thành map
func JSONToMap(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("lỗi khi chuyển đổi JSON thành map: %v", err)
	}
	return result, nil
}

// ExtractJSONObject cắt object JSON đầu tiên ra khỏi một đoạn text tự do.
// Model hay bọc JSON trong code fence hoặc thêm câu dẫn — strip fence trước,
// sau đó lấy từ '{' đầu tiên đến '}' cuối cùng.
// Trả về chuỗi rỗng nếu không tìm thấy object nào.
func ExtractJSONObject(text string) string {
	s := strings.TrimSpace(text)

	// Strip code fence nếu có
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
