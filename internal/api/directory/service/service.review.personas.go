package directorysvc

import (
	"fmt"
	"math/rand"
	"strings"

	"review_factory/internal/api/directory/models"
)

// VerbosityTier phân tầng độ dài prose mà persona được yêu cầu viết
type VerbosityTier string

const (
	VerbosityShort  VerbosityTier = "short"  // ~50-100 từ mỗi field
	VerbosityMedium VerbosityTier = "medium" // ~100-150 từ mỗi field
	VerbosityLong   VerbosityTier = "long"   // ~150-200 từ mỗi field
)

// WordTarget trả về khoảng số từ mục tiêu cho tier
func (v VerbosityTier) WordTarget() (int, int) {
	switch v {
	case VerbosityShort:
		return 50, 100
	case VerbosityLong:
		return 150, 200
	default:
		return 100, 150
	}
}

// Persona mô tả một giọng văn dùng để generate review
type Persona struct {
	Role       string        // Chức danh
	Tenure     string        // Thâm niên
	Sentiment  string        // Sentiment label: positive, enthusiastic, mixed, neutral, frustrated
	Trait      string        // Đặc điểm giọng văn
	Department string        // Phòng ban
	Verbosity  VerbosityTier // Tầng độ dài
}

// personaTable là bảng persona cố định; generator chọn uniform random, cho phép lặp
var personaTable = []Persona{
	{Role: "Software Engineer", Tenure: "2 years", Sentiment: "positive", Trait: "thực tế, hay nói về công nghệ và deadline", Department: "Engineering", Verbosity: VerbosityMedium},
	{Role: "Senior Software Engineer", Tenure: "4 years", Sentiment: "mixed", Trait: "điềm đạm, cân nhắc cả hai mặt", Department: "Engineering", Verbosity: VerbosityLong},
	{Role: "QA Engineer", Tenure: "1 year", Sentiment: "neutral", Trait: "ngắn gọn, chỉ nói điều quan trọng", Department: "Quality Assurance", Verbosity: VerbosityShort},
	{Role: "Product Manager", Tenure: "3 years", Sentiment: "enthusiastic", Trait: "nhiệt tình, hay khen văn hóa và đồng nghiệp", Department: "Product", Verbosity: VerbosityMedium},
	{Role: "Business Analyst", Tenure: "2 years", Sentiment: "mixed", Trait: "phân tích, hay so sánh với công ty cũ", Department: "Operations", Verbosity: VerbosityMedium},
	{Role: "HR Executive", Tenure: "1.5 years", Sentiment: "positive", Trait: "thân thiện, quan tâm phúc lợi", Department: "Human Resources", Verbosity: VerbosityShort},
	{Role: "Sales Executive", Tenure: "8 months", Sentiment: "frustrated", Trait: "thẳng thắn, bức xúc về target và áp lực", Department: "Sales", Verbosity: VerbosityMedium},
	{Role: "Marketing Specialist", Tenure: "2 years", Sentiment: "neutral", Trait: "khách quan, ít cảm xúc", Department: "Marketing", Verbosity: VerbosityShort},
	{Role: "Customer Support Agent", Tenure: "1 year", Sentiment: "frustrated", Trait: "mệt mỏi vì ca kíp, nhưng quý đồng nghiệp", Department: "Support", Verbosity: VerbosityMedium},
	{Role: "DevOps Engineer", Tenure: "3 years", Sentiment: "positive", Trait: "kỹ tính, để ý quy trình và tooling", Department: "Engineering", Verbosity: VerbosityLong},
	{Role: "Intern", Tenure: "6 months", Sentiment: "enthusiastic", Trait: "hào hứng, hay kể trải nghiệm học hỏi", Department: "Engineering", Verbosity: VerbosityShort},
	{Role: "Finance Analyst", Tenure: "2.5 years", Sentiment: "mixed", Trait: "dè dặt, nói giảm nói tránh", Department: "Finance", Verbosity: VerbosityMedium},
	{Role: "Team Lead", Tenure: "5 years", Sentiment: "positive", Trait: "có góc nhìn quản lý, hay nói về con người", Department: "Engineering", Verbosity: VerbosityLong},
	{Role: "Data Analyst", Tenure: "1 year", Sentiment: "neutral", Trait: "dựa trên số liệu, văn phong khô", Department: "Analytics", Verbosity: VerbosityShort},
	{Role: "Operations Executive", Tenure: "4 years", Sentiment: "frustrated", Trait: "chán nản vì thiếu thăng tiến", Department: "Operations", Verbosity: VerbosityMedium},
}

// aiTellBlocklist là các cụm từ "giọng AI" mà prompt yêu cầu model tránh
var aiTellBlocklist = []string{
	"overall, my experience",
	"in conclusion",
	"furthermore",
	"moreover",
	"it is worth noting",
	"delve into",
	"a testament to",
	"fosters a culture",
	"work-life balance is commendable",
	"i would highly recommend",
}

// PickPersona chọn ngẫu nhiên một persona từ bảng (cho phép lặp giữa các lần chọn)
func PickPersona(rng *rand.Rand) Persona {
	return personaTable[rng.Intn(len(personaTable))]
}

// RatingRange trả về khoảng overall rating cho sentiment của persona
func (p Persona) RatingRange() (int, int) {
	switch p.Sentiment {
	case "positive", "enthusiastic":
		return 4, 5
	case "mixed", "neutral":
		return 3, 4
	case "frustrated":
		return 1, 3
	default:
		return 1, 5
	}
}

// BuildFactsPrompt dựng prompt lấy talking points thực tế về organization.
// Kết quả được share cho mọi review trong cùng một run (một round-trip cho cả org).
func BuildFactsPrompt(org *models.Organization) string {
	industry := org.Industry
	if industry == "" {
		industry = "technology"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are helping compile realistic employee sentiment research about the company %q", org.Name))
	b.WriteString(fmt.Sprintf(" which operates in the %s industry.\n\n", industry))
	b.WriteString("List 5 realistic POSITIVE talking points and 5 realistic NEGATIVE talking points that actual employees of a company like this commonly mention in workplace reviews.\n")
	b.WriteString("Keep each point short (one sentence). Be specific to the industry, not generic.\n")
	b.WriteString("Format as two plain-text lists labelled POSITIVES and NEGATIVES. Do not use markdown.")
	return b.String()
}

// BuildReviewPrompt dựng prompt generate một review theo persona, dùng facts làm context
func BuildReviewPrompt(org *models.Organization, persona Persona, facts string) string {
	minRating, maxRating := persona.RatingRange()
	minWords, maxWords := persona.Verbosity.WordTarget()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write an employee review of the company %q.\n\n", org.Name))

	b.WriteString("YOUR PERSONA:\n")
	b.WriteString(fmt.Sprintf("- Role: %s (%s department), tenure %s\n", persona.Role, persona.Department, persona.Tenure))
	b.WriteString(fmt.Sprintf("- Mood about the company: %s\n", persona.Sentiment))
	b.WriteString(fmt.Sprintf("- Voice: %s\n\n", persona.Trait))

	b.WriteString("CONTEXT (common talking points about this company, pick a few that fit your mood):\n")
	b.WriteString(facts)
	b.WriteString("\n\n")

	b.WriteString("STYLE RULES:\n")
	b.WriteString("- Write in first person, informal, with slightly imperfect phrasing like a real person typing quickly.\n")
	b.WriteString(fmt.Sprintf("- Each text field should be roughly %d-%d words.\n", minWords, maxWords))
	b.WriteString("- NEVER use any of these phrases: ")
	b.WriteString(strings.Join(aiTellBlocklist, "; "))
	b.WriteString("\n\n")

	b.WriteString("RATING RULES:\n")
	b.WriteString(fmt.Sprintf("- overallRating must be an integer between %d and %d (matching your mood).\n", minRating, maxRating))
	b.WriteString("- The seven category ratings are integers 1-5 and their average must stay within 1 point of overallRating.\n\n")

	b.WriteString("Respond with ONLY a single JSON object, no markdown fences, no commentary, with exactly these keys:\n")
	b.WriteString(`{"overallRating": int, "ratings": {"workLifeBalance": int, "salaryBenefits": int, "promotions": int, "jobSecurity": int, "skillDevelopment": int, "workSatisfaction": int, "companyCulture": int}, "likes": "string", "dislikes": "string", "content": "string", "designation": "string", "department": "string", "employmentType": "string"}`)
	return b.String()
}
