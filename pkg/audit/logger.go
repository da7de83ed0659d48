package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContextExtractor pulls a value out of ctx, reporting whether it was found.
type ContextExtractor func(context.Context) (string, bool)

// Logger builds events and writes them to a Storage.
type Logger struct {
	storage            Storage
	userIDExtractor    ContextExtractor
	requestIDExtractor ContextExtractor
	ipExtractor        ContextExtractor
	now                func() time.Time
}

type Option func(*Logger)

func WithUserIDExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.userIDExtractor = fn }
}

func WithRequestIDExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.requestIDExtractor = fn }
}

func WithIPExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.ipExtractor = fn }
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger panics on a nil storage.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &Logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.store(ctx, action, ResultSuccess, nil, opts)
}

// LogError records a failed action along with the error text.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	return l.store(ctx, action, ResultError, err, opts)
}

// Query reads back stored events.
func (l *Logger) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	return l.storage.Query(ctx, criteria)
}

func (l *Logger) store(ctx context.Context, action string, result Result, cause error, opts []EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.NewString()
	event.Action = action
	event.Result = result
	event.CreatedAt = l.now().UTC()
	if cause != nil {
		event.Error = cause.Error()
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

func (l *Logger) eventFromContext(ctx context.Context) Event {
	var event Event
	if v, ok := extract(ctx, l.userIDExtractor); ok {
		event.UserID = v
	}
	if v, ok := extract(ctx, l.requestIDExtractor); ok {
		event.RequestID = v
	}
	if v, ok := extract(ctx, l.ipExtractor); ok {
		event.IP = v
	}
	return event
}

func extract(ctx context.Context, fn ContextExtractor) (string, bool) {
	if fn == nil {
		return "", false
	}
	return fn(ctx)
}
