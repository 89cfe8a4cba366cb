package recipe

import (
	"context"
	"time"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Recorder 記錄層級結果，可為 nil
type Recorder interface {
	ObserveTier(tier common.SourceTier, reason common.FailureReason, duration time.Duration)
	ObserveSuggestion(success bool, reason common.FailureReason)
}

// SuggestionService 食譜推薦服務，依查詢決定層級順序並逐層退回
type SuggestionService struct {
	generative Source
	document   Source
	dataset    Source
	recorder   Recorder
}

// NewSuggestionService 創建新的食譜推薦服務，任一來源可為 nil
func NewSuggestionService(generative, document, dataset Source, recorder Recorder) *SuggestionService {
	return &SuggestionService{
		generative: generative,
		document:   document,
		dataset:    dataset,
		recorder:   recorder,
	}
}

// Plan 依查詢決定要嘗試的層級順序
func (s *SuggestionService) Plan(q common.IngredientQuery) []Source {
	var plan []Source
	if !q.HasFocus() || q.ForceGenerativeOnly {
		plan = append(plan, s.generative)
	}
	if q.HasFocus() {
		plan = append(plan, s.document, s.dataset)
	}

	out := plan[:0]
	for _, src := range plan {
		if src != nil {
			out = append(out, src)
		}
	}
	return out
}

// Suggest 執行推薦流程；所有層級都沒有結果時回傳 success=false 與原因說明
func (s *SuggestionService) Suggest(ctx context.Context, q common.IngredientQuery) *common.SuggestResponse {
	q = q.Normalized()
	if q.IsEmpty() {
		return s.fail(q, common.FailureEmptyResult, "Add at least one ingredient to get recipe suggestions.")
	}

	var reason common.FailureReason
	for _, src := range s.Plan(q) {
		start := time.Now()
		records, err := src.Find(ctx, q)

		var results []common.SuggestionResult
		if err == nil {
			results = Format(records, q.FocusIngredient)
			if len(results) == 0 {
				err = common.NewTierError(src.Tier(), common.FailureEmptyResult, 0, nil)
			}
		}
		common.LogTierOutcome(src.Tier(), len(results), err)
		s.observeTier(src.Tier(), common.ReasonOf(err), time.Since(start))

		if err != nil {
			if r := common.ReasonOf(err); reason == "" || reason == common.FailureEmptyResult {
				reason = r
			}
			continue
		}

		common.LogInfo("推薦完成",
			zap.String("tier", string(src.Tier())),
			zap.String("focus", q.FocusIngredient),
			zap.Int("count", len(results)),
		)
		if s.recorder != nil {
			s.recorder.ObserveSuggestion(true, "")
		}
		return &common.SuggestResponse{Success: true, Recipes: results}
	}

	if reason == "" {
		reason = common.FailureEmptyResult
	}
	return s.fail(q, reason, reason.UserMessage(q.FocusIngredient))
}

func (s *SuggestionService) fail(q common.IngredientQuery, reason common.FailureReason, message string) *common.SuggestResponse {
	common.LogWarn("沒有可用的推薦結果",
		zap.String("focus", q.FocusIngredient),
		zap.Int("ingredients", len(q.RawIngredients)),
		zap.String("reason", string(reason)),
	)
	if s.recorder != nil {
		s.recorder.ObserveSuggestion(false, reason)
	}
	return &common.SuggestResponse{
		Success: false,
		Recipes: []common.SuggestionResult{},
		Message: message,
		Reason:  reason,
	}
}

func (s *SuggestionService) observeTier(tier common.SourceTier, reason common.FailureReason, d time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveTier(tier, reason, d)
	}
}
