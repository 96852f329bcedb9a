package application

import (
	"sync"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
)

const DefaultNoticeCapacity = 100

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message about something that happened outside the
// synchronous mutation path: sync results, reminders, insight failures.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Key     *domain.Key `json:"key,omitempty"`
	Token   string      `json:"token,omitempty"`
	At      time.Time   `json:"at"`
}

// NoticeBoard keeps the most recent notices in a bounded ring.
type NoticeBoard struct {
	mu       sync.Mutex
	clock    ports.Clock
	ring     []Notice
	next     int
	count    int
	watchers map[int]chan Notice
	watchID  int
}

func NewNoticeBoard(capacity int, clock ports.Clock) *NoticeBoard {
	if capacity < 1 {
		capacity = DefaultNoticeCapacity
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &NoticeBoard{
		clock:    clock,
		ring:     make([]Notice, capacity),
		watchers: make(map[int]chan Notice),
	}
}

func (b *NoticeBoard) Notify(level NoticeLevel, message string) {
	b.Post(Notice{Level: level, Message: message})
}

// Post records n, stamping At when zero, and fans it out to subscribers.
// Slow subscribers miss notices rather than block the poster.
func (b *NoticeBoard) Post(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.At.IsZero() {
		n.At = b.clock.Now()
	}

	b.ring[b.next] = n
	b.next = (b.next + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}

	for _, ch := range b.watchers {
		select {
		case ch <- n:
		default:
		}
	}
}

// Recent returns up to n notices, oldest first. n <= 0 returns all.
func (b *NoticeBoard) Recent(n int) []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.recentLocked(n)
}

// Drain returns every held notice, oldest first, and empties the board.
func (b *NoticeBoard) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.recentLocked(0)
	clear(b.ring)
	b.next = 0
	b.count = 0

	return out
}

// Subscribe returns a channel receiving every notice posted from now on and a
// function that detaches it.
func (b *NoticeBoard) Subscribe(buffer int) (<-chan Notice, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Notice, max(buffer, 1))
	id := b.watchID
	b.watchID++
	b.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.watchers, id)
			close(ch)
		})
	}
}

func (b *NoticeBoard) recentLocked(n int) []Notice {
	if n <= 0 || n > b.count {
		n = b.count
	}

	out := make([]Notice, 0, n)
	start := (b.next - n + len(b.ring)) % len(b.ring)
	for i := range n {
		out = append(out, b.ring[(start+i)%len(b.ring)])
	}

	return out
}
