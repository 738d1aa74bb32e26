// Package textgen gọi Google AI Studio (Gemini) để generate text.
// Layer này tự phân loại lỗi (ErrorKind) để retry policy không phải đoán theo message.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"review_factory/internal/logger"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Pricing per 1K tokens theo model (USD) — dùng để ước tính cost trong run summary
var modelPricing = map[string]struct {
	Input  float64
	Output float64
}{
	"gemini-1.5-pro":   {Input: 0.00125, Output: 0.005},
	"gemini-1.5-flash": {Input: 0.000075, Output: 0.0003},
}

// Usage chứa token counts của một lần generate
type Usage struct {
	PromptTokens int // Token của prompt
	OutputTokens int // Token của output
}

// Total trả về tổng số token
func (u Usage) Total() int {
	return u.PromptTokens + u.OutputTokens
}

// Result là kết quả một lần generate thành công
type Result struct {
	Text  string // Text do model trả về
	Usage Usage  // Token usage
}

// Client gọi Gemini generateContent qua REST
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient tạo client với API key và model.
// timeout áp cho từng request (bao gồm cả đọc response body).
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model trả về tên model đang dùng
func (c *Client) Model() string {
	return c.model
}

// EstimateCost ước tính cost (USD) cho usage theo pricing của model hiện tại.
// Model không có trong bảng pricing thì trả về 0.
func (c *Client) EstimateCost(u Usage) float64 {
	pricing, ok := modelPricing[c.model]
	if !ok {
		return 0
	}
	return float64(u.PromptTokens)/1000*pricing.Input + float64(u.OutputTokens)/1000*pricing.Output
}

// generateContentRequest theo schema của Gemini REST API
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse theo schema của Gemini REST API (chỉ các field cần dùng)
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Generate gửi một prompt tới Gemini và trả về text + usage.
// Lỗi trả về luôn là *ProviderError đã phân loại.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	log := logger.GetAppLogger()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	payload := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(KindFatal, "Không marshal được request payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, NewProviderError(KindFatal, "Không tạo được HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		perr := classifyTransportError(err)
		log.WithError(err).WithFields(map[string]interface{}{
			"model": c.model,
			"kind":  perr.Kind.String(),
		}).Error("🤖 [TEXTGEN] Lỗi khi gọi Gemini API")
		return nil, perr
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		perr := classifyStatusCode(resp.StatusCode, string(bodyBytes))
		log.WithFields(map[string]interface{}{
			"model":      c.model,
			"statusCode": resp.StatusCode,
			"kind":       perr.Kind.String(),
		}).Error("🤖 [TEXTGEN] Gemini API trả về lỗi")
		return nil, perr
	}

	var result generateContentResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, NewParseError("Không decode được response của provider", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, NewParseError("Provider trả về response không có candidate nào", nil)
	}

	text := ""
	for _, p := range result.Candidates[0].Content.Parts {
		text += p.Text
	}

	usage := Usage{
		PromptTokens: result.UsageMetadata.PromptTokenCount,
		OutputTokens: result.UsageMetadata.CandidatesTokenCount,
	}

	log.WithFields(map[string]interface{}{
		"model":        c.model,
		"promptTokens": usage.PromptTokens,
		"outputTokens": usage.OutputTokens,
		"durationMs":   time.Since(start).Milliseconds(),
	}).Debug("🤖 [TEXTGEN] Generate thành công")

	return &Result{Text: text, Usage: usage}, nil
}
