package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/cenkalti/backoff/v4"
)

// Config tunes the dispatcher.
type Config struct {
	Workers       int
	QueueSize     int
	MaxRetries    uint64
	RetryInterval time.Duration
	SendTimeout   time.Duration
	From          string
	DefaultLocale string
}

type job struct {
	reg   model.Registration
	event model.Event
}

// Dispatcher renders confirmation messages and delivers them on a pool of
// workers. Delivery is at-least-once from the mailer's point of view: a send
// that times out after the transport accepted it is retried.
type Dispatcher struct {
	mailer Mailer
	cfg    Config
	log    *slog.Logger
	jobs   chan job

	mu       sync.RWMutex
	closed   bool
	overflow sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher. Call Run to start delivering.
func NewDispatcher(mailer Mailer, cfg Config, log *slog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = backoff.DefaultInitialInterval
	}
	return &Dispatcher{
		mailer: mailer,
		cfg:    cfg,
		log:    log,
		jobs:   make(chan job, cfg.QueueSize),
	}
}

// Notify queues a confirmation for reg. It never blocks: when the queue is
// full the job is handed to a goroutine that waits for room.
func (d *Dispatcher) Notify(reg model.Registration, event model.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Error("notification dropped",
			slog.String("code", string(apperr.CodeNotificationFailure)),
			slog.String("registration_id", reg.ID),
			slog.String("reason", "dispatcher stopped"),
		)
		return
	}

	j := job{reg: reg, event: event}
	select {
	case d.jobs <- j:
	default:
		d.log.Warn("notification queue full", slog.String("registration_id", reg.ID))
		d.overflow.Add(1)
		go func() {
			defer d.overflow.Done()
			d.jobs <- j
		}()
	}
}

// Run delivers queued notifications until ctx is done, then stops accepting
// new ones and drains what is already queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	var workers sync.WaitGroup
	for range d.cfg.Workers {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for j := range d.jobs {
				d.deliver(j)
			}
		}()
	}

	<-ctx.Done()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.overflow.Wait()
	close(d.jobs)
	workers.Wait()
	d.log.Info("notification dispatcher stopped")
	return nil
}

// deliver runs on its own contexts so a shutdown in progress still lets
// queued confirmations go out.
func (d *Dispatcher) deliver(j job) {
	msg := Render(j.reg, j.event, d.cfg.From, d.cfg.DefaultLocale)

	send := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		defer cancel()
		return d.mailer.Send(ctx, msg)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.RetryInterval
	policy := backoff.WithMaxRetries(b, d.cfg.MaxRetries)

	err := backoff.RetryNotify(send, policy, func(err error, wait time.Duration) {
		d.log.Warn("confirmation send failed, retrying",
			slog.String("registration_id", j.reg.ID),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	})
	if err != nil {
		d.log.Error("confirmation not delivered",
			slog.String("code", string(apperr.CodeNotificationFailure)),
			slog.String("registration_id", j.reg.ID),
			slog.String("event_id", j.event.ID),
			slog.Any("error", err),
		)
		return
	}
	d.log.Debug("confirmation delivered",
		slog.String("registration_id", j.reg.ID),
		slog.String("locale", msg.Locale),
	)
}
