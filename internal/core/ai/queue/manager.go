package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Request 隊列請求
type Request struct {
	Context context.Context
	Request *provider.Request
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Response *provider.Response
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 以固定數量 worker 呼叫生成服務，限制同時進行的上游請求
type Manager struct {
	config    config.QueueConfig
	provider  provider.Provider
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

var _ provider.Provider = (*Manager)(nil)

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig, p provider.Provider) *Manager {
	return &Manager{
		config:   cfg,
		provider: p,
		queue:    make(chan *Request, cfg.MaxSize),
		done:     make(chan struct{}),
	}
}

// Start 啟動 worker
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		for i := 0; i < m.config.Workers; i++ {
			m.wg.Add(1)
			go m.worker(i)
		}
		common.LogInfo("生成隊列已啟動",
			zap.Int("workers", m.config.Workers),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	})
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(id, req)
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	// 呼叫端已放棄就不再送出
	if err := req.Context.Err(); err != nil {
		atomic.AddInt64(&m.processed, 1)
		req.Result <- Result{Error: common.NewTierError(common.TierGenerative, common.FailureNetwork, 0, err)}
		return
	}

	start := time.Now()
	resp, err := m.provider.Generate(req.Context, req.Request)
	common.LogDebug("queue request processed",
		zap.Int("worker", id),
		zap.Duration("耗時", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	atomic.AddInt64(&m.processed, 1)
	req.Result <- Result{Response: resp, Error: err}
}

// Enqueue 將請求加入隊列
func (m *Manager) Enqueue(ctx context.Context, req *provider.Request) (<-chan Result, error) {
	queueReq := &Request{
		Context: ctx,
		Request: req,
		Result:  make(chan Result, 1),
	}

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	select {
	case m.queue <- queueReq:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return queueReq.Result, nil
	default:
		return nil, common.NewTierError(common.TierGenerative, common.FailureRateLimited, 0,
			fmt.Errorf("queue is full (%d)", m.config.MaxSize))
	}
}

// Generate 排隊後等待結果
func (m *Manager) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	result, err := m.Enqueue(ctx, req)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-result:
		return res.Response, res.Error
	case <-ctx.Done():
		return nil, common.NewTierError(common.TierGenerative, common.FailureNetwork, 0, ctx.Err())
	case <-m.done:
		return nil, common.NewTierError(common.TierGenerative, common.FailureNetwork, 0, ErrClosed)
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// GetModel 獲取模型名稱
func (m *Manager) GetModel() string {
	return m.provider.GetModel()
}

// GetTimeout 獲取請求超時時間
func (m *Manager) GetTimeout() time.Duration {
	return m.provider.GetTimeout()
}

// Close 停止 worker 並關閉底層提供者
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		err = m.provider.Close()
	})
	return err
}
