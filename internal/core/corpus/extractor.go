package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Extractor 由文件路徑取得純文字，取不到內容時回傳空字串
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PlainTextExtractor 直接讀取文字檔
type PlainTextExtractor struct{}

// Extract 讀取檔案內容
func (PlainTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// PDFExtractor 以 ledongthuc/pdf 取出 PDF 文字
type PDFExtractor struct{}

// Extract 取出 PDF 純文字
func (PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// CommandExtractor 呼叫外部命令（如 pdftotext），參數中的 {path} 會被替換
type CommandExtractor struct {
	Command string
	Args    []string
}

// Extract 執行命令並回傳標準輸出
func (e CommandExtractor) Extract(ctx context.Context, path string) (string, error) {
	if e.Command == "" {
		return "", errors.New("extractor command is empty")
	}

	args := make([]string, len(e.Args))
	replaced := false
	for i, a := range e.Args {
		if strings.Contains(a, "{path}") {
			replaced = true
		}
		args[i] = strings.ReplaceAll(a, "{path}", path)
	}
	if !replaced {
		args = append(args, path)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", e.Command, err, common.Truncate(strings.TrimSpace(stderr.String()), 200))
	}
	return stdout.String(), nil
}

// ChainExtractor 依序嘗試，回傳第一個非空結果
type ChainExtractor []Extractor

// Extract 依序呼叫內部 extractor
func (c ChainExtractor) Extract(ctx context.Context, path string) (string, error) {
	var errs []error
	for _, e := range c {
		text, err := e.Extract(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", errors.Join(errs...)
}

type cachedText struct {
	modTime time.Time
	size    int64
	text    string
}

// CachedExtractor 依檔案修改時間快取正規化後的文字
type CachedExtractor struct {
	inner   Extractor
	mu      sync.RWMutex
	entries map[string]cachedText
	group   singleflight.Group
}

// NewCachedExtractor 包裝 extractor
func NewCachedExtractor(inner Extractor) *CachedExtractor {
	return &CachedExtractor{
		inner:   inner,
		entries: make(map[string]cachedText),
	}
}

// Extract 檔案未變更時直接回傳快取
func (c *CachedExtractor) Extract(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		common.LogCacheHit("corpus")
		return entry.text, nil
	}
	common.LogCacheMiss("corpus")

	key := fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size())
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.entries[path]
		c.mu.RUnlock()
		if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return entry.text, nil
		}

		start := time.Now()
		text, err := c.inner.Extract(ctx, path)
		if err != nil {
			return "", err
		}
		text = NormalizeText(text)

		c.mu.Lock()
		c.entries[path] = cachedText{modTime: info.ModTime(), size: info.Size(), text: text}
		c.mu.Unlock()

		common.LogInfo("參考文件已擷取",
			zap.String("path", path),
			zap.Int("length", len(text)),
			zap.Duration("耗時", time.Since(start)),
		)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		common.LogDebug("共用進行中的文件擷取", zap.String("path", path))
	}
	return v.(string), nil
}

// NewExtractor 依設定建立 extractor
func NewExtractor(cfg config.CorpusConfig) Extractor {
	command := CommandExtractor{Command: cfg.Command, Args: cfg.CommandArgs}

	var e Extractor
	switch cfg.Extractor {
	case "text":
		e = PlainTextExtractor{}
	case "pdf":
		e = PDFExtractor{}
	case "command":
		e = command
	default:
		switch strings.ToLower(filepath.Ext(cfg.DocumentPath)) {
		case ".pdf":
			e = ChainExtractor{PDFExtractor{}, command}
		default:
			e = PlainTextExtractor{}
		}
	}

	if cfg.CacheEnabled {
		return NewCachedExtractor(e)
	}
	return e
}
