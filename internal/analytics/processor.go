package analytics

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"WAGroups-Backend/pkg/useragent"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Click is one "join group" action queued for telemetry processing. The
// group's click counter is already incremented synchronously by the time a
// Click reaches this package; losing a telemetry row never loses a count.
type Click struct {
	GroupID   int64
	IPAddress *string
	UserAgent *string
	Referer   *string
	ClickedAt *time.Time
}

// Recorder accepts clicks for asynchronous recording. Handlers depend on
// this interface so tests can substitute a mock.
type Recorder interface {
	SubmitClick(click *Click) error
	Start() error
	Stop() error
	GetStats() map[string]interface{}
}

// ProcessorConfig holds configuration for the telemetry processor.
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed jobs
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     2,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Processor records click telemetry off the request path: a bounded queue
// feeds a small worker pool, failed writes are retried with backoff, and a
// full queue drops the click with an error log rather than blocking the
// join redirect.
type Processor struct {
	config   ProcessorConfig
	storage  repository.Storage
	parser   *useragent.Parser
	log      *zap.Logger
	jobQueue chan *Click
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewProcessor creates a new telemetry processor.
func NewProcessor(storage repository.Storage, parser *useragent.Parser, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		parser:   parser,
		log:      log,
		jobQueue: make(chan *Click, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing queued clicks.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting click telemetry processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop gracefully shuts down the processor, draining queued clicks. The
// context is cancelled only after the workers run the queue dry, so a click
// accepted before Stop is still recorded; past the shutdown timeout the
// cancel aborts retry backoffs and the backlog is dropped.
func (p *Processor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	p.log.Info("stopping click telemetry processor")

	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info("click telemetry processor stopped")
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		p.log.Warn("click telemetry processor shutdown timeout reached, dropping queued clicks")
		return fmt.Errorf("shutdown timeout reached")
	}

	p.started = false
	return nil
}

// SubmitClick queues a click for recording. A full queue is reported as an
// error and the click is dropped; callers treat this as best-effort.
func (p *Processor) SubmitClick(click *Click) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	select {
	case p.jobQueue <- click:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
		p.log.Error("telemetry queue is full, dropping click",
			zap.Int64("group_id", click.GroupID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return fmt.Errorf("telemetry queue is full")
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Info("telemetry worker started")

	for {
		select {
		case click := <-p.jobQueue:
			if click == nil {
				log.Info("telemetry worker stopped")
				return
			}
			p.recordWithRetry(log, click)

		case <-p.ctx.Done():
			log.Info("telemetry worker received shutdown signal")
			return
		}
	}
}

func (p *Processor) recordWithRetry(log *zap.Logger, click *Click) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := p.record(ctx, click)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		log.Warn("click telemetry write failed",
			zap.Int64("group_id", click.GroupID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			return
		}
	}

	log.Error("click telemetry dropped after all retries",
		zap.Int64("group_id", click.GroupID),
		zap.Error(lastErr),
	)
}

func (p *Processor) record(ctx context.Context, click *Click) error {
	event := &domain.ClickEvent{
		GroupID:   click.GroupID,
		UserAgent: click.UserAgent,
		Referer:   click.Referer,
		ClickedAt: time.Now(),
	}
	if click.ClickedAt != nil {
		event.ClickedAt = *click.ClickedAt
	}

	if click.UserAgent != nil && p.parser != nil {
		info := p.parser.ParseUserAgent(*click.UserAgent)
		event.DeviceType = &info.DeviceType
		event.Browser = &info.Browser
		event.OS = &info.OS
	}

	if click.IPAddress != nil && *click.IPAddress != "" {
		if ip := net.ParseIP(*click.IPAddress); ip != nil {
			event.IPAddress = &ip
		}
	}

	if err := p.storage.RecordClickEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record click event: %w", err)
	}
	return nil
}

// GetStats returns processor statistics for the metrics endpoint.
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
	}
}
