package directorysvc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"review_factory/internal/api/directory/models"
	"review_factory/internal/global"
	"review_factory/internal/logger"
	"review_factory/internal/textgen"
)

// HighSimilarityThreshold là ngưỡng cảnh báo của sweep all-pairs cuối mỗi org
const HighSimilarityThreshold = 0.85

// GeneratorService điều phối việc generate review cho các organization
type GeneratorService struct {
	orgService    *OrganizationService
	reviewService *ReviewService
	provider      *textgen.Client
	retryPolicy   textgen.RetryPolicy
	providerPause time.Duration
	groupSize     int
	groupPause    time.Duration
	rng           *rand.Rand
	rngMu         sync.Mutex
}

// orgRunResult là kết quả xử lý một organization
type orgRunResult struct {
	Generated  int
	Discarded  int
	TokensUsed int
	Cost       float64
}

// NewGeneratorService tạo mới GeneratorService từ config và các collection đã đăng ký
func NewGeneratorService() (*GeneratorService, error) {
	orgService, err := NewOrganizationService()
	if err != nil {
		return nil, err
	}
	reviewService, err := NewReviewService()
	if err != nil {
		return nil, err
	}

	cfg := global.MongoDB_ServerConfig
	provider := textgen.NewClient(
		cfg.Gemini_APIKey,
		cfg.Gemini_Model,
		time.Duration(cfg.Gemini_TimeoutSeconds)*time.Second,
	)

	return &GeneratorService{
		orgService:    orgService,
		reviewService: reviewService,
		provider:      provider,
		retryPolicy:   textgen.NewRetryPolicy(cfg.Retry_MaxAttempts, time.Duration(cfg.Retry_BaseDelayMs)*time.Millisecond),
		providerPause: time.Duration(cfg.Provider_PauseMs) * time.Millisecond,
		groupSize:     cfg.Generator_GroupSize,
		groupPause:    time.Duration(cfg.Generator_GroupPauseMs) * time.Millisecond,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// pickPersona chọn persona thread-safe (các org trong cùng group chạy song song)
func (s *GeneratorService) pickPersona() Persona {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return PickPersona(s.rng)
}

// Run chạy generator trên các organization target, theo nhóm song song cố định.
// Lỗi của một org không làm dừng batch; run luôn kết thúc với một summary.
func (s *GeneratorService) Run(ctx context.Context, opts RunOptions) (*GeneratorSummary, error) {
	log := logger.GetAppLogger()
	start := time.Now()

	summary := &GeneratorSummary{Mode: runMode(opts.DryRun)}

	orgs, err := s.selectOrganizations(ctx, opts)
	if err != nil {
		return nil, err
	}
	summary.OrgsTargeted = len(orgs)

	log.WithFields(logrus.Fields{
		"orgs":      len(orgs),
		"batchSize": opts.BatchSize,
		"mode":      summary.Mode,
	}).Info("🏭 [GENERATOR] Bắt đầu run")

	var mu sync.Mutex
	for groupStart := 0; groupStart < len(orgs); groupStart += s.groupSize {
		groupEnd := groupStart + s.groupSize
		if groupEnd > len(orgs) {
			groupEnd = len(orgs)
		}
		group := orgs[groupStart:groupEnd]

		var wg sync.WaitGroup
		for i := range group {
			wg.Add(1)
			go func(org models.Organization) {
				defer wg.Done()

				result, err := s.ProcessOrganization(ctx, &org, opts)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.OrgsFailed++
					log.WithError(err).WithField("org", org.Name).Error("🏭 [GENERATOR] Organization fail toàn phần")
					return
				}
				summary.OrgsCompleted++
				summary.Generated += result.Generated
				summary.Discarded += result.Discarded
				summary.TokensUsed += result.TokensUsed
				summary.EstimatedCost += result.Cost
			}(group[i])
		}
		wg.Wait()

		// Nghỉ giữa các nhóm để giữ throughput tổng dưới limit của provider
		if groupEnd < len(orgs) {
			time.Sleep(s.groupPause)
		}
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	log.WithFields(logrus.Fields{
		"completed": summary.OrgsCompleted,
		"failed":    summary.OrgsFailed,
		"generated": summary.Generated,
		"tokens":    summary.TokensUsed,
	}).Info("🏭 [GENERATOR] Kết thúc run")

	return summary, nil
}

// selectOrganizations chọn pool organization cho run: target tường minh hoặc toàn bộ draft
func (s *GeneratorService) selectOrganizations(ctx context.Context, opts RunOptions) ([]models.Organization, error) {
	if len(opts.Targets) > 0 {
		return s.orgService.ResolveTargets(ctx, opts.Targets)
	}
	return s.orgService.FindDraftPool(ctx, DefaultOrgPoolLimit)
}

// DefaultOrgPoolLimit là trần ngầm định của pool khi chạy chế độ "tất cả"
const DefaultOrgPoolLimit = 50

// ProcessOrganization generate review cho một organization theo quota cap.
// Các review của cùng org luôn generate tuần tự để giữ đúng nhịp rate limit.
func (s *GeneratorService) ProcessOrganization(ctx context.Context, org *models.Organization, opts RunOptions) (*orgRunResult, error) {
	log := logger.GetAppLogger()
	result := &orgRunResult{}

	// Bước 1: cap gate
	reviewCap := ReviewCapForEmployeeCount(org.EmployeeCount)
	current, err := s.reviewService.CountLiveByOrg(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("không đếm được review hiện có của %s: %w", org.Name, err)
	}

	target := GenerationTarget(opts.BatchSize, reviewCap, int(current), opts.Force)
	if target <= 0 {
		log.WithFields(logrus.Fields{
			"org":     org.Name,
			"cap":     reviewCap,
			"current": current,
		}).Info("🏭 [GENERATOR] Org đã chạm cap, bỏ qua")
		return result, nil
	}

	// Bước 2: một facts request dùng chung cho cả target review
	factsResult, err := textgen.CallWithRetry(ctx, s.retryPolicy, func(ctx context.Context) (*textgen.Result, error) {
		return s.provider.Generate(ctx, BuildFactsPrompt(org))
	})
	time.Sleep(s.providerPause)
	if err != nil {
		return nil, fmt.Errorf("không lấy được facts cho %s: %w", org.Name, err)
	}
	result.TokensUsed += factsResult.Usage.Total()
	result.Cost += s.provider.EstimateCost(factsResult.Usage)

	// Bước 3-7: generate tuần tự từng review theo persona
	var generated []*models.Review
	for i := 0; i < target; i++ {
		review, usage, err := s.generateOne(ctx, org, factsResult.Text)
		time.Sleep(s.providerPause)

		if usage != nil {
			result.TokensUsed += usage.Total()
			result.Cost += s.provider.EstimateCost(*usage)
		}
		if err != nil {
			result.Discarded++
			log.WithError(err).WithFields(logrus.Fields{
				"org":       org.Name,
				"iteration": i + 1,
			}).Warn("🏭 [GENERATOR] Loại một review")
			continue
		}

		review.OrganizationID = org.ID

		if opts.DryRun {
			printWouldBeReview(org, review)
			result.Generated++
			generated = append(generated, review)
			continue
		}

		inserted, err := s.reviewService.InsertOne(ctx, *review)
		if err != nil {
			result.Discarded++
			log.WithError(err).WithField("org", org.Name).Error("🏭 [GENERATOR] Không insert được review")
			continue
		}
		result.Generated++
		generated = append(generated, &inserted)

		if opts.Verbose {
			log.WithFields(logrus.Fields{
				"org":     org.Name,
				"id":      inserted.ID.Hex(),
				"overall": inserted.OverallRating,
				"persona": inserted.PersonaRole,
			}).Info("🏭 [GENERATOR] Đã tạo review")
		}
	}

	// Bước 8: sweep all-pairs similarity trên content, chỉ cảnh báo
	s.similaritySweep(org, generated)

	return result, nil
}

// GenerationTarget tính số review sẽ generate trong run này: min(batch, cap - current).
// Force bỏ qua cap gate và dùng nguyên batch size.
func GenerationTarget(batchSize, reviewCap, current int, force bool) int {
	if force {
		return batchSize
	}
	remaining := reviewCap - current
	if remaining <= 0 {
		return 0
	}
	if batchSize < remaining {
		return batchSize
	}
	return remaining
}

// generateOne generate và validate một review đơn lẻ.
// Retry bao trùm cả bước parse: parse fail được coi như lỗi transient vì chỉ regenerate mới sửa được.
func (s *GeneratorService) generateOne(ctx context.Context, org *models.Organization, facts string) (*models.Review, *textgen.Usage, error) {
	persona := s.pickPersona()
	prompt := BuildReviewPrompt(org, persona, facts)

	var totalUsage textgen.Usage

	review, err := textgen.CallWithRetry(ctx, s.retryPolicy, func(ctx context.Context) (*models.Review, error) {
		providerResult, err := s.provider.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		totalUsage.PromptTokens += providerResult.Usage.PromptTokens
		totalUsage.OutputTokens += providerResult.Usage.OutputTokens

		return ParseGeneratedReview(providerResult.Text, persona, s.provider.Model(), providerResult.Usage.Total())
	})
	if err != nil {
		return nil, &totalUsage, err
	}

	// Bước 5: tự sửa overall rating lệch quá xa mean trước khi validate
	if RepairCoherence(review) {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"org":     org.Name,
			"overall": review.OverallRating,
		}).Debug("🏭 [GENERATOR] Đã sửa overall rating theo mean")
	}

	// Bước 6: structural validation dùng chung rule set với moderation
	if evalResult := EvaluateReview(review); !evalResult.Valid {
		return nil, &totalUsage, fmt.Errorf("review không đạt rule %s", evalResult.Reason)
	}
	if global.Validate != nil {
		if err := global.Validate.Struct(review); err != nil {
			return nil, &totalUsage, fmt.Errorf("review không đạt struct validation: %w", err)
		}
	}

	review.TokensUsed = totalUsage.Total()
	return review, &totalUsage, nil
}

// similaritySweep so content của mọi cặp review vừa generate, cảnh báo cặp quá giống nhau
func (s *GeneratorService) similaritySweep(org *models.Organization, reviews []*models.Review) {
	log := logger.GetAppLogger()

	for i := 0; i < len(reviews); i++ {
		for j := i + 1; j < len(reviews); j++ {
			similarity := JaccardSimilarity(reviews[i].Content, reviews[j].Content)
			if similarity > HighSimilarityThreshold {
				log.WithFields(logrus.Fields{
					"org":        org.Name,
					"pair":       fmt.Sprintf("%d-%d", i, j),
					"similarity": fmt.Sprintf("%.2f", similarity),
				}).Warn("🏭 [GENERATOR] Hai review trong cùng run quá giống nhau")
			}
		}
	}
}

// printWouldBeReview in record sẽ được insert khi không chạy dry-run
func printWouldBeReview(org *models.Organization, review *models.Review) {
	payload, err := json.MarshalIndent(map[string]interface{}{
		"organization": org.Name,
		"review":       review,
	}, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(payload))
}

// runMode trả về nhãn mode cho summary
func runMode(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "live"
}
