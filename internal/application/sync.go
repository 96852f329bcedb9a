package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/google/uuid"
)

const defaultSyncTimeout = 10 * time.Second

// SyncResult describes the outcome of one remote call.
type SyncResult struct {
	Token string
	Op    domain.ChangeOp
	Key   domain.Key
	Err   error
	// Stale is set when a newer change for the same key was queued while this
	// one was in flight. Stale results are never reported as successes.
	Stale bool
}

type syncJob struct {
	change domain.Change
	token  string
	seq    uint64
}

// Syncer pushes local changes to a RecordStore from a single background
// worker, in the order they were enqueued. It never touches history; results
// go to the notice board and the optional result hook.
type Syncer struct {
	store   ports.RecordStore
	notices *NoticeBoard
	logger  *slog.Logger
	timeout time.Duration
	onDone  func(SyncResult)

	mu      sync.Mutex
	queue   []syncJob
	latest  map[domain.Key]uint64
	seq     uint64
	pending int
	idle    []chan struct{}
	closed  bool

	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

type SyncerOption func(*Syncer)

// WithSyncTimeout bounds each remote call.
func WithSyncTimeout(d time.Duration) SyncerOption {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithSyncLogger(logger *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSyncResultHook registers fn to observe every result, stale ones
// included. It runs on the worker goroutine.
func WithSyncResultHook(fn func(SyncResult)) SyncerOption {
	return func(s *Syncer) {
		s.onDone = fn
	}
}

// NewSyncer starts the worker. Call Close to stop it.
func NewSyncer(store ports.RecordStore, notices *NoticeBoard, opts ...SyncerOption) *Syncer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Syncer{
		store:   store,
		notices: notices,
		logger:  slog.Default(),
		timeout: defaultSyncTimeout,
		latest:  make(map[domain.Key]uint64),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sync")

	go s.run()

	return s
}

// Enqueue schedules changes and returns their request tokens in order. It
// never blocks on the remote store.
func (s *Syncer) Enqueue(changes []domain.Change) []string {
	if len(changes) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("dropping changes enqueued after close", "count", len(changes))
		return nil
	}

	tokens := make([]string, 0, len(changes))
	for _, change := range changes {
		s.seq++
		s.latest[change.Key] = s.seq
		job := syncJob{change: change, token: uuid.NewString(), seq: s.seq}
		s.queue = append(s.queue, job)
		tokens = append(tokens, job.token)
	}
	s.pending += len(changes)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return tokens
}

// Flush waits until every enqueued change has been attempted or ctx ends.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	s.idle = append(s.idle, done)
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush sync queue: %w", ctx.Err())
	}
}

// Close stops the worker. Changes still queued are abandoned.
func (s *Syncer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	s.cancel()
	<-s.stopped

	s.mu.Lock()
	abandoned := len(s.queue)
	s.queue = nil
	s.mu.Unlock()
	if abandoned > 0 {
		s.logger.Warn("abandoned queued changes on close", "count", abandoned)
		s.finish(abandoned)
	}

	return nil
}

func (s *Syncer) run() {
	defer close(s.stopped)

	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}

		for {
			job, ok := s.pop()
			if !ok {
				break
			}
			s.process(job)

			select {
			case <-s.stop:
				return
			default:
			}
		}
	}
}

func (s *Syncer) pop() (syncJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return syncJob{}, false
	}
	job := s.queue[0]
	s.queue[0] = syncJob{}
	s.queue = s.queue[1:]

	return job, true
}

// finish marks n jobs as attempted and releases Flush callers once the queue
// is empty.
func (s *Syncer) finish(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending -= n
	if s.pending > 0 {
		return
	}
	s.pending = 0
	for _, ch := range s.idle {
		close(ch)
	}
	s.idle = nil
}

func (s *Syncer) process(job syncJob) {
	defer s.finish(1)

	op := string(job.change.Op)
	start := time.Now()
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	err := s.apply(ctx, job.change)
	cancel()
	syncDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	stale := s.latest[job.change.Key] != job.seq
	if !stale {
		delete(s.latest, job.change.Key)
	}
	s.mu.Unlock()

	result := SyncResult{Token: job.token, Op: job.change.Op, Key: job.change.Key, Err: err, Stale: stale}
	s.report(result)
	if s.onDone != nil {
		s.onDone(result)
	}
}

func (s *Syncer) apply(ctx context.Context, change domain.Change) error {
	switch change.Op {
	case domain.ChangeInsert:
		if _, err := s.store.Insert(ctx, change.Item); err != nil {
			return fmt.Errorf("insert %s: %w", change.Key, err)
		}
	case domain.ChangeUpdate:
		err := s.store.Update(ctx, change.Item)
		if errors.Is(err, domain.ErrRecordNotFound) {
			if _, insertErr := s.store.Insert(ctx, change.Item); insertErr != nil {
				return fmt.Errorf("update %s and insert fallback: %w", change.Key, errors.Join(err, insertErr))
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("update %s: %w", change.Key, err)
		}
	case domain.ChangeDelete:
		err := s.store.Delete(ctx, change.Key)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return fmt.Errorf("delete %s: %w", change.Key, err)
		}
	default:
		return fmt.Errorf("unsupported change op %q", change.Op)
	}

	return nil
}

func (s *Syncer) report(r SyncResult) {
	key := r.Key
	switch {
	case r.Stale:
		syncOperationsTotal.WithLabelValues(string(r.Op), "stale").Inc()
		s.logger.Debug("discarding superseded sync result", "key", key.String(), "token", r.Token, "err", r.Err)
	case r.Err != nil:
		syncOperationsTotal.WithLabelValues(string(r.Op), "error").Inc()
		s.logger.Error("sync failed", "key", key.String(), "op", r.Op, "token", r.Token, "err", r.Err)
		if s.notices != nil {
			s.notices.Post(Notice{
				Level:   NoticeError,
				Message: fmt.Sprintf("Could not sync %s of %s: %v", r.Op, key, r.Err),
				Key:     &key,
				Token:   r.Token,
			})
		}
	default:
		syncOperationsTotal.WithLabelValues(string(r.Op), "ok").Inc()
		s.logger.Debug("synced", "key", key.String(), "op", r.Op, "token", r.Token)
		if s.notices != nil {
			s.notices.Post(Notice{
				Level:   NoticeSuccess,
				Message: fmt.Sprintf("Synced %s of %s", r.Op, key),
				Key:     &key,
				Token:   r.Token,
			})
		}
	}
}
