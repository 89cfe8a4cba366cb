package recipe

import (
	"context"
	"errors"

	"recipe-suggester/internal/pkg/common"
)

// Source 推薦來源，每個層級實作一個
type Source interface {
	Tier() common.SourceTier
	Find(ctx context.Context, q common.IngredientQuery) ([]common.DishRecord, error)
}

// Generator 生成式服務
type Generator interface {
	Generate(ctx context.Context, q common.IngredientQuery) ([]common.DishRecord, error)
}

// Searcher 以主要食材查詢的參考資料
type Searcher interface {
	Search(ctx context.Context, focus string) ([]common.DishRecord, error)
}

// GenerativeSource AI 生成層級
type GenerativeSource struct {
	generator Generator
}

// NewGenerativeSource 包裝生成式服務
func NewGenerativeSource(g Generator) *GenerativeSource {
	return &GenerativeSource{generator: g}
}

func (s *GenerativeSource) Tier() common.SourceTier { return common.TierGenerative }

// Find 呼叫生成式服務
func (s *GenerativeSource) Find(ctx context.Context, q common.IngredientQuery) ([]common.DishRecord, error) {
	if s.generator == nil {
		return nil, common.NewTierError(common.TierGenerative, common.FailureConfiguration, 0,
			errors.New("generative service is not configured"))
	}
	return s.generator.Generate(ctx, q)
}

// searchSource 文件與資料集共用的查詢層級
type searchSource struct {
	tier     common.SourceTier
	searcher Searcher
}

// NewDocumentSource 參考文件層級
func NewDocumentSource(s Searcher) Source {
	return &searchSource{tier: common.TierDocument, searcher: s}
}

// NewDatasetSource 資料集層級
func NewDatasetSource(s Searcher) Source {
	return &searchSource{tier: common.TierDataset, searcher: s}
}

func (s *searchSource) Tier() common.SourceTier { return s.tier }

func (s *searchSource) Find(ctx context.Context, q common.IngredientQuery) ([]common.DishRecord, error) {
	if s.searcher == nil {
		return nil, common.NewTierError(s.tier, common.FailureEmptyResult, 0, errors.New("source is not loaded"))
	}
	if !q.HasFocus() {
		return nil, common.NewTierError(s.tier, common.FailureEmptyResult, 0, errors.New("focus ingredient is required"))
	}
	return s.searcher.Search(ctx, q.FocusIngredient)
}
