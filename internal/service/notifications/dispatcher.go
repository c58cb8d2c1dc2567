package notifications

import (
	"context"
	"sync"
	"time"
)

const (
	defaultQueueSize = 100
	defaultWorkers   = 2
	defaultTimeout   = 10 * time.Second
)

// DispatcherConfig настройки очереди побочных эффектов
type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration // ограничение на выполнение одной задачи
}

type job struct {
	kind string
	run  func(ctx context.Context) error
}

// Dispatcher выполняет побочные эффекты (уведомления, письма) в фоне.
// Ошибки задач логируются и учитываются в метриках, но никогда не возвращаются вызывающему.
// При переполнении очереди задача отбрасывается.
type Dispatcher struct {
	queue   chan job
	timeout time.Duration
	logger  Logger
	metrics MetricsCollector

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher создает очередь и запускает воркеры
func NewDispatcher(cfg DispatcherConfig, logger Logger, metrics MetricsCollector) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	d := &Dispatcher{
		queue:   make(chan job, cfg.QueueSize),
		timeout: cfg.Timeout,
		logger:  logger,
		metrics: metrics,
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker()
	}
	return d
}

// Dispatch ставит задачу в очередь, не блокируясь. Возвращает false, если задача отброшена.
func (d *Dispatcher) Dispatch(kind string, run func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatch: dispatcher closed, dropping %s job", kind)
		d.observeFailure(kind)
		return false
	}

	select {
	case d.queue <- job{kind: kind, run: run}:
		return true
	default:
		d.logger.Warn("Dispatch: queue full, dropping %s job", kind)
		d.observeFailure(kind)
		return false
	}
}

// Close прекращает приём задач и ждёт выполнения уже поставленных, пока не истечёт ctx
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.queue {
		d.execute(j)
	}
}

func (d *Dispatcher) execute(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Dispatcher: %s job panicked: %v", j.kind, p)
			d.observeFailure(j.kind)
		}
	}()

	if err := j.run(ctx); err != nil {
		d.logger.Error("Dispatcher: %s job failed: %v", j.kind, err)
		d.observeFailure(j.kind)
	}
}

func (d *Dispatcher) observeFailure(kind string) {
	if d.metrics != nil {
		d.metrics.ObserveSideEffectFailure(kind)
	}
}
