package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrEventValidation = errors.New("audit event validation failed")
	ErrStorage         = errors.New("audit storage failure")
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultError   Result = "error"
)

// Event is a single audit trail entry. UserID is the actor; Resource and
// ResourceID name what was acted upon.
type Event struct {
	ID         string         `json:"id" bson:"_id"`
	UserID     string         `json:"userId,omitempty" bson:"userId,omitempty"`
	Action     string         `json:"action" bson:"action"`
	Resource   string         `json:"resource,omitempty" bson:"resource,omitempty"`
	ResourceID string         `json:"resourceId,omitempty" bson:"resourceId,omitempty"`
	Result     Result         `json:"result" bson:"result"`
	Error      string         `json:"error,omitempty" bson:"error,omitempty"`
	RequestID  string         `json:"requestId,omitempty" bson:"requestId,omitempty"`
	IP         string         `json:"ip,omitempty" bson:"ip,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" bson:"createdAt"`
}

func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

// EventOption adjusts an event before it is stored.
type EventOption func(*Event)

func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

func WithResult(result Result) EventOption {
	return func(e *Event) { e.Result = result }
}

// DefaultLimit and MaxLimit bound Criteria.Limit.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Criteria filters a query. Zero fields match everything. Results are
// ordered newest first.
type Criteria struct {
	UserID     string
	Action     string
	ResourceID string
	Result     Result
	Since      time.Time
	Limit      int
}

func (c Criteria) limit() int {
	switch {
	case c.Limit <= 0:
		return DefaultLimit
	case c.Limit > MaxLimit:
		return MaxLimit
	default:
		return c.Limit
	}
}

func (c Criteria) matches(e Event) bool {
	return (c.UserID == "" || e.UserID == c.UserID) &&
		(c.Action == "" || e.Action == c.Action) &&
		(c.ResourceID == "" || e.ResourceID == c.ResourceID) &&
		(c.Result == "" || e.Result == c.Result) &&
		(c.Since.IsZero() || !e.CreatedAt.Before(c.Since))
}

// Storage persists and queries events.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
	Query(ctx context.Context, criteria Criteria) ([]Event, error)
}
