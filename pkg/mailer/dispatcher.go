package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrDispatcherClosed is returned when jobs are dispatched after Close.
var ErrDispatcherClosed = errors.New("mailer: dispatcher closed")

// ErrQueueFull is returned when the local queue has no room left.
var ErrQueueFull = errors.New("mailer: queue full")

// Dispatcher hands an email job off for asynchronous delivery. A nil error
// only means the job was accepted.
type Dispatcher interface {
	Dispatch(ctx context.Context, job EmailJob) error
}

// Publisher is the subset of helpers.RabbitPublisher used for dispatching.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueDispatcher publishes jobs to RabbitMQ for cmd/email_worker.
type QueueDispatcher struct {
	Pub Publisher
}

func NewQueueDispatcher(pub Publisher) *QueueDispatcher {
	return &QueueDispatcher{Pub: pub}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Pub.PublishJSON(c, job)
}

// LocalDispatcher delivers jobs from a bounded in-process queue with a fixed
// number of workers. Send failures are logged and dropped.
type LocalDispatcher struct {
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration

	jobs   chan EmailJob
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewLocalDispatcher(sender Sender, logger *logrus.Logger, workers, queueSize int) *LocalDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &LocalDispatcher{
		sender:  sender,
		logger:  logger,
		timeout: 15 * time.Second,
		jobs:    make(chan EmailJob, queueSize),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

func (d *LocalDispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := Deliver(ctx, d.sender, job)
		cancel()
		if err != nil {
			if d.logger != nil {
				d.logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("email delivery failed")
			}
			continue
		}
		if d.logger != nil {
			d.logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Debug("email delivered")
		}
	}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to be delivered.
func (d *LocalDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
