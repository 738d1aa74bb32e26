package directorysvc

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"review_factory/internal/api/directory/models"
)

// Ngưỡng của các rule moderation
const (
	LikesDislikesMinLen = 50
	LikesDislikesMaxLen = 2000
	ContentMinLen       = 50
	ContentMaxLen       = 1500

	// Jaccard giữa likes và dislikes
	SimilarityRejectThreshold = 0.90
	SimilarityWarnThreshold   = 0.70
)

// phraseBlocklist là các cụm từ "giọng AI" bị cấm trong text đã lower-case.
// Tách riêng với blocklist trong prompt để tune độc lập.
var phraseBlocklist = []string{
	"as an ai",
	"language model",
	"i cannot provide",
	"overall, my experience",
	"in conclusion",
	"it is worth noting",
	"delve into",
	"a testament to",
	"i would highly recommend this company to anyone",
}

// redFlagPatterns là các pattern regex nghi là máy sinh hoặc lỗi sinh
var redFlagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bas an ai\b`),                  // Tự nhận là AI
	regexp.MustCompile(`(?i)\blanguage model\b`),            // Nhắc đến language model
	regexp.MustCompile(`(?is)(\butiliz(e|ation|ing)\b.*){3}`), // Lạm dụng "utilize", kể cả rải trên nhiều dòng
	regexp.MustCompile(`(?i)^(in conclusion|to summarize|in summary)\b`),
}

// artifactMarkers là dấu hiệu leak cấu trúc từ bước parse JSON
var artifactMarkers = []string{`{"`, "```"}

// EvaluateResult là kết quả đánh giá một review
type EvaluateResult struct {
	Valid    bool     // Review qua được tất cả rule không
	Reason   string   // Lý do rule đầu tiên fail (khi Valid = false)
	Warnings []string // Cảnh báo không gây reject
}

// JaccardSimilarity tính Jaccard trên word-set (lower-case, tách theo whitespace).
// Cả hai rỗng -> 1; một bên rỗng -> 0.
func JaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// wordSet tách chuỗi thành set các từ lower-case
func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = struct{}{}
	}
	return set
}

// EvaluateReview chạy toàn bộ battery rule moderation trên một review.
// Mọi rule phải pass thì Valid = true; Reason là rule đầu tiên fail.
func EvaluateReview(review *models.Review) EvaluateResult {
	result := EvaluateResult{Valid: false}

	// Rule 1: 3 field text phải có mặt và trong giới hạn độ dài
	if reason := checkTextField("likes", review.Likes, LikesDislikesMinLen, LikesDislikesMaxLen); reason != "" {
		result.Reason = reason
		return result
	}
	if reason := checkTextField("dislikes", review.Dislikes, LikesDislikesMinLen, LikesDislikesMaxLen); reason != "" {
		result.Reason = reason
		return result
	}
	if reason := checkTextField("content", review.Content, ContentMinLen, ContentMaxLen); reason != "" {
		result.Reason = reason
		return result
	}

	// Rule 2: overall rating trong [1,5]
	if review.OverallRating < 1 || review.OverallRating > 5 {
		result.Reason = fmt.Sprintf("overall_rating_out_of_range: %d", review.OverallRating)
		return result
	}

	// Rule 3: coherence giữa overall và mean của 7 rating thành phần (defense in depth,
	// generator đã tự sửa nhưng review cũ có thể còn vi phạm)
	if hasGranularRatings(review.Ratings) {
		mean := review.Ratings.Mean()
		if math.Abs(float64(review.OverallRating)-mean) > CoherenceTolerance {
			result.Reason = fmt.Sprintf("rating_incoherent: overall=%d mean=%.2f", review.OverallRating, mean)
			return result
		}
	}

	// Rule 4: Jaccard giữa likes và dislikes
	similarity := JaccardSimilarity(review.Likes, review.Dislikes)
	if similarity > SimilarityRejectThreshold {
		result.Reason = fmt.Sprintf("likes_dislikes_too_similar: jaccard=%.2f", similarity)
		return result
	}
	if similarity > SimilarityWarnThreshold {
		result.Warnings = append(result.Warnings, fmt.Sprintf("likes_dislikes_similar: jaccard=%.2f", similarity))
	}

	combined := strings.ToLower(review.Likes + " " + review.Dislikes + " " + review.Content)

	// Rule 5: blocklist cụm từ + pattern red flag
	for _, phrase := range phraseBlocklist {
		if strings.Contains(combined, phrase) {
			result.Reason = fmt.Sprintf("blocklisted_phrase: %q", phrase)
			return result
		}
	}
	if hasTripleWordRepeat(combined) {
		result.Reason = `red_flag_pattern: \b(\w+)\s+\1\s+\1\b`
		return result
	}
	for _, pattern := range redFlagPatterns {
		if pattern.MatchString(combined) {
			result.Reason = fmt.Sprintf("red_flag_pattern: %s", pattern.String())
			return result
		}
	}

	// Rule 6: artifact leak từ bước extract JSON
	for _, marker := range artifactMarkers {
		if strings.Contains(combined, marker) {
			result.Reason = fmt.Sprintf("structural_artifact: %q", marker)
			return result
		}
	}
	if strings.Contains(combined, "}") {
		result.Reason = "structural_artifact: stray brace"
		return result
	}

	result.Valid = true
	return result
}

// checkTextField kiểm tra field text có mặt và trong giới hạn độ dài.
// Đếm theo rune để khớp với validator min/max trên struct tag — text tiếng Việt
// nhiều byte hơn số ký tự.
func checkTextField(name, value string, minLen, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Sprintf("%s_missing", name)
	}
	length := utf8.RuneCountInString(trimmed)
	if length < minLen {
		return fmt.Sprintf("%s_too_short: %d < %d", name, length, minLen)
	}
	if length > maxLen {
		return fmt.Sprintf("%s_too_long: %d > %d", name, length, maxLen)
	}
	return ""
}

// wordRunPattern khớp một dãy ký tự \w liên tục (một "từ" theo nghĩa regex)
var wordRunPattern = regexp.MustCompile(`\w+`)

// hasTripleWordRepeat báo hiệu một từ lặp 3 lần liên tiếp, chỉ ngăn cách bằng
// whitespace — tương đương pattern `\b(\w+)\s+\1\s+\1\b`, thứ mà RE2 của Go
// không biểu diễn được vì thiếu backreference.
func hasTripleWordRepeat(s string) bool {
	runs := wordRunPattern.FindAllStringIndex(s, -1)
	for i := 0; i+2 < len(runs); i++ {
		word := s[runs[i][0]:runs[i][1]]
		if s[runs[i+1][0]:runs[i+1][1]] != word || s[runs[i+2][0]:runs[i+2][1]] != word {
			continue
		}
		if isWhitespaceOnly(s[runs[i][1]:runs[i+1][0]]) && isWhitespaceOnly(s[runs[i+1][1]:runs[i+2][0]]) {
			return true
		}
	}
	return false
}

// isWhitespaceOnly kiểm tra chuỗi chỉ gồm các ký tự khớp `\s` của regex
func isWhitespaceOnly(s string) bool {
	return s != "" && strings.Trim(s, " \t\n\f\r") == ""
}

// hasGranularRatings kiểm tra có ít nhất một rating thành phần được set không
func hasGranularRatings(r models.RatingBreakdown) bool {
	for _, v := range r.Values() {
		if v != 0 {
			return true
		}
	}
	return false
}
