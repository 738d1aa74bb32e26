package directorysvc

// RunOptions là tham số chung của một lần chạy batch (truyền từ CLI xuống service,
// thay cho cờ global — mỗi run giữ context riêng của nó)
type RunOptions struct {
	Targets      []string // Danh sách org target (ObjectID hex hoặc slug); rỗng = tất cả draft
	BatchSize    int      // Số đơn vị xử lý tối đa mỗi run
	DryRun       bool     // Chỉ tính toán và in, không ghi store
	Verbose      bool     // In diagnostic từng đơn vị
	Force        bool     // Generator: bỏ qua cap gate
	Limit        int      // Validator: trần tổng số review xử lý (0 = không giới hạn)
	ShowRejected bool     // Validator: in chi tiết review bị reject
}

// GeneratorSummary là summary cuối run của generator (in ra stdout dạng JSON)
type GeneratorSummary struct {
	Mode          string  `json:"mode"`          // live | dry-run
	OrgsTargeted  int     `json:"orgsTargeted"`  // Số org được chọn xử lý
	OrgsCompleted int     `json:"orgsCompleted"` // Số org xử lý xong không lỗi
	OrgsFailed    int     `json:"orgsFailed"`    // Số org fail toàn phần
	Generated     int     `json:"generated"`     // Số review đã insert (hoặc sẽ insert nếu dry-run)
	Discarded     int     `json:"discarded"`     // Số review bị loại trước khi insert
	TokensUsed    int     `json:"tokensUsed"`    // Tổng token của run
	EstimatedCost float64 `json:"estimatedCost"` // Cost ước tính (USD)
	DurationMs    int64   `json:"durationMs"`    // Thời gian chạy
}

// ModerationSummary là summary cuối run của validator
type ModerationSummary struct {
	Mode       string         `json:"mode"`       // live | dry-run
	Evaluated  int            `json:"evaluated"`  // Số review đã đánh giá
	Approved   int            `json:"approved"`   // Số review approved
	Rejected   int            `json:"rejected"`   // Số review rejected
	Skipped    int            `json:"skipped"`    // Số review bỏ qua do lỗi ghi (vẫn pending)
	Reasons    map[string]int `json:"reasons"`    // Histogram lý do reject
	DurationMs int64          `json:"durationMs"` // Thời gian chạy
}

// PublisherSummary là summary cuối run của publisher
type PublisherSummary struct {
	Mode       string `json:"mode"`       // live | dry-run
	Flipped    int    `json:"flipped"`    // Phase A: số review đã flip sang published
	OrgsFirst  int    `json:"orgsFirst"`  // Phase A: số org flip draft -> published lần đầu
	Scheduled  int    `json:"scheduled"`  // Phase B: số review được gán publishedAt
	Throttled  bool   `json:"throttled"`  // Phase B bị auto-throttle bỏ qua không
	Failed     int    `json:"failed"`     // Số đơn vị fail do lỗi store
	DurationMs int64  `json:"durationMs"` // Thời gian chạy
}
