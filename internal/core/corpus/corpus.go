package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Corpus 參考文件查詢
type Corpus struct {
	path      string
	extractor Extractor
}

// New 創建參考文件查詢
func New(path string, extractor Extractor) *Corpus {
	return &Corpus{path: path, extractor: extractor}
}

// Path 文件路徑
func (c *Corpus) Path() string {
	return c.path
}

// Search 擷取文件文字並找出含主要食材的菜色
func (c *Corpus) Search(ctx context.Context, focus string) ([]common.DishRecord, error) {
	text, err := c.extractor.Extract(ctx, c.path)
	if err != nil {
		common.LogWarn("參考文件擷取失敗", zap.String("path", c.path), zap.Error(err))
		return nil, common.NewTierError(common.TierDocument, common.FailureEmptyResult, 0,
			fmt.Errorf("extract document: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.NewTierError(common.TierDocument, common.FailureEmptyResult, 0,
			errors.New("document text is empty"))
	}

	records := ParseDocument(text, focus)
	if len(records) == 0 {
		return nil, common.NewTierError(common.TierDocument, common.FailureEmptyResult, 0,
			fmt.Errorf("no dishes mention %q", focus))
	}
	return records, nil
}

// Warm 預先擷取文件文字，讓快取在第一個請求前就緒
func (c *Corpus) Warm(ctx context.Context) error {
	start := time.Now()
	text, err := c.extractor.Extract(ctx, c.path)
	if err != nil {
		return fmt.Errorf("warm corpus %s: %w", c.path, err)
	}
	common.LogInfo("參考文件預熱完成",
		zap.String("path", c.path),
		zap.Int("length", len(text)),
		zap.Duration("耗時", time.Since(start)),
	)
	return nil
}
