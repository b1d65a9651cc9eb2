package bots

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PackageWorker runs packaging jobs off a queue so template copy and
// zip I/O never stall callers holding store traffic. Jobs are retryable
// by re-enqueueing; the pipeline clears prior partial state itself.
type PackageWorker struct {
	service *Service
	queue   chan string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	packaged int64
	failed   int64
	running  atomic.Bool
	started  time.Time
}

type WorkerStats struct {
	Packaged  int64
	Failed    int64
	InQueue   int
	IsRunning bool
	StartedAt time.Time
}

func NewPackageWorker(service *Service, queueSize int) *PackageWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &PackageWorker{
		service: service,
		queue:   make(chan string, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *PackageWorker) Start() {
	w.running.Store(true)
	w.started = time.Now()

	w.wg.Add(1)
	go w.run()

	log.Info("package worker started")
}

func (w *PackageWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.running.Store(false)
	log.Info("package worker stopped")
}

// Enqueue schedules a packaging run for the bot id. It reports false
// when the queue is full rather than blocking the caller.
func (w *PackageWorker) Enqueue(botID string) bool {
	select {
	case w.queue <- botID:
		return true
	default:
		log.Warn("package queue full", "bot_id", botID)
		return false
	}
}

func (w *PackageWorker) Stats() WorkerStats {
	return WorkerStats{
		Packaged:  atomic.LoadInt64(&w.packaged),
		Failed:    atomic.LoadInt64(&w.failed),
		InQueue:   len(w.queue),
		IsRunning: w.running.Load(),
		StartedAt: w.started,
	}
}

func (w *PackageWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case botID := <-w.queue:
			if _, err := w.service.Package(botID); err != nil {
				atomic.AddInt64(&w.failed, 1)
				log.Error("queued packaging failed", "bot_id", botID, "error", err)
				continue
			}
			atomic.AddInt64(&w.packaged, 1)
		}
	}
}
