package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	calls int32
	inner Extractor
	delay time.Duration
}

func (c *countingExtractor) Extract(ctx context.Context, path string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	time.Sleep(c.delay)
	return c.inner.Extract(ctx, path)
}

type staticExtractor struct {
	text string
	err  error
}

func (s staticExtractor) Extract(ctx context.Context, path string) (string, error) {
	return s.text, s.err
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dishes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCachedExtractorReusesUntilModified(t *testing.T) {
	path := writeDoc(t, "A\r\n\r\n\r\n\r\n\r\nB")
	inner := &countingExtractor{inner: PlainTextExtractor{}}
	cached := NewCachedExtractor(inner)
	ctx := context.Background()

	text, err := cached.Extract(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "A\n\n\nB", text)

	_, err = cached.Extract(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))

	require.NoError(t, os.WriteFile(path, []byte("C"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	text, err = cached.Extract(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "C", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedExtractorCollapsesConcurrentCalls(t *testing.T) {
	path := writeDoc(t, bangsilogDoc)
	inner := &countingExtractor{inner: PlainTextExtractor{}, delay: 50 * time.Millisecond}
	cached := NewCachedExtractor(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := cached.Extract(context.Background(), path)
			assert.NoError(t, err)
			assert.Contains(t, text, "BANGSILOG")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestChainExtractorFirstNonEmpty(t *testing.T) {
	chain := ChainExtractor{
		staticExtractor{err: errors.New("broken")},
		staticExtractor{text: "   "},
		staticExtractor{text: "found"},
	}
	text, err := chain.Extract(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "found", text)

	text, err = ChainExtractor{staticExtractor{err: errors.New("broken")}}.Extract(context.Background(), "x")
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestCommandExtractorMissingBinary(t *testing.T) {
	e := CommandExtractor{Command: "definitely-not-a-real-binary-xyz", Args: []string{"{path}"}}
	_, err := e.Extract(context.Background(), "file.pdf")
	assert.Error(t, err)
}

func TestNewExtractorSelection(t *testing.T) {
	assert.IsType(t, PlainTextExtractor{}, NewExtractor(config.CorpusConfig{Extractor: "auto", DocumentPath: "doc.txt"}))
	assert.IsType(t, ChainExtractor{}, NewExtractor(config.CorpusConfig{Extractor: "auto", DocumentPath: "doc.PDF"}))
	assert.IsType(t, PDFExtractor{}, NewExtractor(config.CorpusConfig{Extractor: "pdf"}))
	assert.IsType(t, &CachedExtractor{}, NewExtractor(config.CorpusConfig{Extractor: "text", CacheEnabled: true}))
}

func TestCorpusSearch(t *testing.T) {
	ctx := context.Background()
	path := writeDoc(t, referenceDoc)
	c := New(path, NewCachedExtractor(PlainTextExtractor{}))

	records, err := c.Search(ctx, "manok")
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = c.Search(ctx, "bangus")
	assert.Equal(t, common.FailureEmptyResult, common.ReasonOf(err))

	missing := New(filepath.Join(t.TempDir(), "missing.pdf"), PlainTextExtractor{})
	_, err = missing.Search(ctx, "manok")
	assert.Equal(t, common.FailureEmptyResult, common.ReasonOf(err))
}

func TestCorpusWarmPrimesCache(t *testing.T) {
	ctx := context.Background()
	path := writeDoc(t, referenceDoc)
	inner := &countingExtractor{inner: PlainTextExtractor{}}
	c := New(path, NewCachedExtractor(inner))

	require.NoError(t, c.Warm(ctx))
	_, err := c.Search(ctx, "manok")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))

	missing := New(filepath.Join(t.TempDir(), "missing.pdf"), PlainTextExtractor{})
	assert.Error(t, missing.Warm(ctx))
}
