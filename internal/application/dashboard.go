package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/history"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/bnema/growth-dashboard/internal/view"
)

var (
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
	ErrUnsupportedAction = errors.New("unsupported action")
)

// DefaultReminderInterval is how many unsaved commits trigger an export
// reminder.
const DefaultReminderInterval = 5

// Dashboard owns the history of one session. Every state change goes through
// Dispatch, which serializes callers so concurrent HTTP handlers see a single
// ordered timeline.
type Dashboard struct {
	mu       sync.Mutex
	history  *history.History
	clock    ports.Clock
	syncer   *Syncer
	notices  *NoticeBoard
	logger   *slog.Logger
	unsaved  int
	reminder int
	// issued is the highest id per kind seen in any committed snapshot.
	issued map[domain.Kind]domain.ItemID
}

type DashboardOption func(*Dashboard)

// WithSyncer forwards every state transition to s.
func WithSyncer(s *Syncer) DashboardOption {
	return func(d *Dashboard) {
		d.syncer = s
	}
}

func WithNotices(b *NoticeBoard) DashboardOption {
	return func(d *Dashboard) {
		if b != nil {
			d.notices = b
		}
	}
}

func WithLogger(logger *slog.Logger) DashboardOption {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithReminderInterval sets how many unsaved commits trigger a reminder.
// Zero disables reminders.
func WithReminderInterval(n int) DashboardOption {
	return func(d *Dashboard) {
		if n >= 0 {
			d.reminder = n
		}
	}
}

func NewDashboard(seed domain.Snapshot, capacity int, clock ports.Clock, opts ...DashboardOption) *Dashboard {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	d := &Dashboard{
		history:  history.New(seed, capacity),
		clock:    clock,
		logger:   slog.Default(),
		reminder: DefaultReminderInterval,
		issued:   make(map[domain.Kind]domain.ItemID, len(domain.Kinds())),
	}
	d.observeIDs(seed)
	for _, opt := range opts {
		opt(d)
	}
	if d.notices == nil {
		d.notices = NewNoticeBoard(DefaultNoticeCapacity, clock)
	}
	d.logger = d.logger.With("component", "dashboard")

	return d
}

// Dispatch applies one action. Mutations that match nothing return a Result
// with Changed false and no error; nothing is committed for them.
func (d *Dashboard) Dispatch(ctx context.Context, action Action) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch a := action.(type) {
	case CreateAction:
		return d.create(a)
	case UpdateAction:
		return d.update(a)
	case DeleteAction:
		return d.deleteSelection(a.ActionName(), domain.NewSelection(a.Key))
	case BatchDeleteAction:
		return d.deleteSelection(a.ActionName(), a.Selection)
	case UndoAction:
		return d.undo()
	case RedoAction:
		return d.redo()
	case ImportAction:
		return d.importSnapshot(a)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnsupportedAction, action)
	}
}

func (d *Dashboard) Create(ctx context.Context, item domain.Item) (Result, error) {
	return d.Dispatch(ctx, CreateAction{Item: item})
}

func (d *Dashboard) Update(ctx context.Context, item domain.Item) (Result, error) {
	return d.Dispatch(ctx, UpdateAction{Item: item})
}

func (d *Dashboard) Delete(ctx context.Context, key domain.Key) (Result, error) {
	return d.Dispatch(ctx, DeleteAction{Key: key})
}

func (d *Dashboard) BatchDelete(ctx context.Context, sel domain.SelectionSet) (Result, error) {
	return d.Dispatch(ctx, BatchDeleteAction{Selection: sel})
}

func (d *Dashboard) Undo(ctx context.Context) (Result, error) {
	return d.Dispatch(ctx, UndoAction{})
}

func (d *Dashboard) Redo(ctx context.Context) (Result, error) {
	return d.Dispatch(ctx, RedoAction{})
}

func (d *Dashboard) Import(ctx context.Context, snap domain.Snapshot) (Result, error) {
	return d.Dispatch(ctx, ImportAction{Snapshot: snap})
}

func (d *Dashboard) Current() domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.history.Current()
}

func (d *Dashboard) History() history.Info {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.history.Info()
}

// Timeline returns every snapshot in history, oldest first.
func (d *Dashboard) Timeline() []domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.history.Entries()
}

// View filters and sorts one collection of the current snapshot.
func (d *Dashboard) View(q view.Query) ([]domain.Item, error) {
	return view.Apply(d.Current(), q)
}

func (d *Dashboard) Stats() Stats {
	return ComputeStats(d.Current())
}

func (d *Dashboard) Notices() *NoticeBoard {
	return d.notices
}

// Unsaved returns how many commits happened since the last import or export.
func (d *Dashboard) Unsaved() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.unsaved
}

// MarkExported resets the unsaved counter after a successful export.
func (d *Dashboard) MarkExported() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unsaved = 0
}

func (d *Dashboard) create(a CreateAction) (Result, error) {
	if a.Item == nil {
		return Result{}, fmt.Errorf("create: %w: missing item", domain.ErrInvalidItem)
	}

	next, created := d.history.Current().Create(a.Item, d.clock.Now(), d.issued[a.Item.Kind()])
	if created == nil {
		return Result{}, fmt.Errorf("create: %w: unsupported item %T", domain.ErrInvalidItem, a.Item)
	}
	if err := domain.Validate(created); err != nil {
		return Result{}, fmt.Errorf("create: %w", err)
	}

	result := d.commit(a.ActionName(), next)
	result.Item = created

	return result, nil
}

func (d *Dashboard) update(a UpdateAction) (Result, error) {
	if a.Item == nil {
		return Result{}, fmt.Errorf("update: %w: missing item", domain.ErrInvalidItem)
	}

	current := d.history.Current()
	next, ok := current.Update(a.Item)
	if !ok {
		return d.noop(a.ActionName(), current, a.Item.Key()), nil
	}

	stored, _ := next.Find(a.Item.Key())
	if err := domain.Validate(stored); err != nil {
		return Result{}, fmt.Errorf("update: %w", err)
	}

	result := d.commit(a.ActionName(), next)
	result.Item = stored

	return result, nil
}

func (d *Dashboard) deleteSelection(name string, sel domain.SelectionSet) (Result, error) {
	current := d.history.Current()
	next, removed := current.DeleteSelection(sel)
	if removed == 0 {
		return d.noop(name, current, sel.Keys()...), nil
	}

	result := d.commit(name, next)
	result.Removed = removed

	return result, nil
}

func (d *Dashboard) importSnapshot(a ImportAction) (Result, error) {
	if err := domain.ValidateSnapshot(a.Snapshot); err != nil {
		return Result{}, fmt.Errorf("import: %w", err)
	}

	result := d.commit(a.ActionName(), a.Snapshot.Clone())
	d.unsaved = 0
	d.notices.Notify(NoticeSuccess, fmt.Sprintf("Imported %d books, %d jobs and %d words", len(a.Snapshot.Books), len(a.Snapshot.Jobs), len(a.Snapshot.Vocab)))

	return result, nil
}

func (d *Dashboard) undo() (Result, error) {
	before := d.history.Current()
	after, ok := d.history.Undo()
	if !ok {
		historyNavigationTotal.WithLabelValues("undo", "boundary").Inc()
		return Result{}, ErrNothingToUndo
	}
	historyNavigationTotal.WithLabelValues("undo", "ok").Inc()

	return d.transition(UndoAction{}.ActionName(), before, after), nil
}

func (d *Dashboard) redo() (Result, error) {
	before := d.history.Current()
	after, ok := d.history.Redo()
	if !ok {
		historyNavigationTotal.WithLabelValues("redo", "boundary").Inc()
		return Result{}, ErrNothingToRedo
	}
	historyNavigationTotal.WithLabelValues("redo", "ok").Inc()

	return d.transition(RedoAction{}.ActionName(), before, after), nil
}

func (d *Dashboard) commit(name string, next domain.Snapshot) Result {
	before := d.history.Current()
	d.history.Commit(next)
	d.observeIDs(next)
	commitsTotal.WithLabelValues(name).Inc()

	d.unsaved++
	if d.reminder > 0 && d.unsaved%d.reminder == 0 {
		d.notices.Notify(NoticeWarning, fmt.Sprintf("%d unsaved changes! Consider exporting your data.", d.unsaved))
	}

	return d.transition(name, before, next)
}

// observeIDs raises the per-kind id high-water mark. It never goes down, so an
// id freed by a delete or an undo is not issued again in this session.
func (d *Dashboard) observeIDs(snap domain.Snapshot) {
	for _, kind := range domain.Kinds() {
		if id := snap.MaxID(kind); id > d.issued[kind] {
			d.issued[kind] = id
		}
	}
}

// transition pushes the difference between two snapshots to the remote store.
// The local state is final before any remote call is made.
func (d *Dashboard) transition(name string, before, after domain.Snapshot) Result {
	changes := domain.Diff(before, after)
	result := Result{
		Action:   name,
		Changed:  true,
		Snapshot: after,
		Changes:  changes,
	}

	if d.syncer != nil && len(changes) > 0 {
		result.Tokens = d.syncer.Enqueue(changes)
	}

	d.logger.Debug("state transition", "action", name, "changes", len(changes), "cursor", d.history.Cursor(), "len", d.history.Len())

	return result
}

func (d *Dashboard) noop(name string, current domain.Snapshot, keys ...domain.Key) Result {
	noopMutationsTotal.WithLabelValues(name).Inc()
	d.logger.Debug("mutation matched nothing", "action", name, "keys", len(keys))

	return Result{Action: name, Snapshot: current}
}
