package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/robfig/cron/v3"
)

// CleanupSchedule is how often expired jobs are evicted.
const CleanupSchedule = "@every 5m"

// Options sizes the pipeline.
type Options struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
}

// Orchestrator manages the summarization pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	svc   *digest.Service
	log   *slog.Logger
	opts  Options
	cron  *cron.Cron

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to run it.
func NewOrchestrator(opts Options, svc *digest.Service, log *slog.Logger) *Orchestrator {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = 1
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = time.Hour
	}
	return &Orchestrator{
		jobs:  NewJobStore(opts.JobTTL),
		queue: make(chan *Job, opts.MaxQueueSize),
		svc:   svc,
		log:   log,
		opts:  opts,
	}
}

// Start launches worker goroutines and the cleanup schedule.
func (o *Orchestrator) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.opts.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.svc, o.jobs, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.cron = cron.New()
	if _, err := o.cron.AddFunc(CleanupSchedule, func() {
		if n := o.jobs.Cleanup(); n > 0 {
			o.log.Info("expired jobs removed", "count", n)
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("schedule job cleanup: %w", err)
	}
	o.cron.Start()
	return nil
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cron != nil {
		<-o.cron.Stop().Done()
	}
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.opts.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// JobCount returns the number of jobs still tracked.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}
