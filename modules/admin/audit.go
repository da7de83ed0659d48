package admin

import (
	"errors"
	"time"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

type auditQuery struct {
	Username string `query:"username"`
	Action   string `query:"action"`
	Result   string `query:"result"`
	Limit    int    `query:"limit"`
}

type auditEventResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Result    audit.Result   `json:"result"`
	Error     string         `json:"error,omitempty"`
	ActorID   string         `json:"actorId,omitempty"`
	AccountID string         `json:"accountId,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// auditTrail lists security events, newest first. Filtering by username
// resolves the current account, so events of a deleted account are only
// reachable unfiltered.
func (s *Service) auditTrail(ctx handler.Context, req auditQuery) handler.Response {
	if err := validator.Apply(
		validator.When(req.Result != "", validator.OneOfString("result", req.Result,
			[]string{string(audit.ResultSuccess), string(audit.ResultFailure), string(audit.ResultError)})),
		validator.RangeInt("limit", req.Limit, 0, audit.MaxLimit),
	); err != nil {
		return handler.Error(err)
	}

	criteria := audit.Criteria{Action: req.Action, Result: audit.Result(req.Result), Limit: req.Limit}
	if req.Username != "" {
		acc, err := s.auth.GetAccount(ctx, req.Username)
		if err != nil {
			return handler.Error(err)
		}
		criteria.ResourceID = acc.ID.String()
	}

	events, err := s.trail.Query(ctx, criteria)
	if err != nil {
		return handler.Error(errors.Join(auth.ErrStorage, err))
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			ID:        e.ID,
			Action:    e.Action,
			Result:    e.Result,
			Error:     e.Error,
			ActorID:   e.UserID,
			AccountID: e.ResourceID,
			RequestID: e.RequestID,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	return handler.JSON(out, handler.WithJSONMeta(map[string]any{"total": len(out)}))
}
