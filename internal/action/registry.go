package action

import (
	"context"
	"fmt"
	"sort"

	"github.com/egannguyen/earphones-support/internal/observability"
)

// WebhookRequest is the action-server call made by the dialogue engine.
type WebhookRequest struct {
	NextAction string  `json:"next_action"`
	SenderID   string  `json:"sender_id"`
	Tracker    Tracker `json:"tracker"`
	Version    string  `json:"version,omitempty"`
}

// WebhookResponse carries the events and messages produced by one action.
type WebhookResponse struct {
	Events    []Event    `json:"events"`
	Responses []Response `json:"responses"`
}

// UnknownActionError reports a next_action with no registered handler.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("No registered action found for name '%s'.", e.Name)
}

// Registry dispatches webhook calls to actions by name.
type Registry struct {
	actions map[string]Action
	logger  *observability.Logger
}

// NewRegistry registers every custom action and form validator.
func NewRegistry(svc Support, logger *observability.Logger) *Registry {
	if logger == nil {
		logger = observability.Nop()
	}
	r := &Registry{actions: make(map[string]Action), logger: logger}
	for _, a := range []Action{
		searchProducts{svc: svc, logger: logger},
		getRecommendations{svc: svc, logger: logger},
		trackOrder{svc: svc, logger: logger},
		lodgeComplaint{svc: svc, logger: logger},
		escalateToHuman{svc: svc, logger: logger},
		defaultFallback{},
	} {
		r.Register(a)
	}
	for _, v := range formValidators() {
		r.Register(v)
	}
	return r
}

// Register adds or replaces an action.
func (r *Registry) Register(a Action) {
	r.actions[a.Name()] = a
}

// Names lists the registered actions in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes req.NextAction against req.Tracker.
func (r *Registry) Run(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	a, ok := r.actions[req.NextAction]
	if !ok {
		return nil, &UnknownActionError{Name: req.NextAction}
	}

	r.logger.Debug().Str("action", req.NextAction).Str("sender_id", req.SenderID).Msg("running action")

	var d Dispatcher
	events := a.Run(ctx, &d, &req.Tracker)
	if events == nil {
		events = []Event{}
	}
	if d.Responses == nil {
		d.Responses = []Response{}
	}
	return &WebhookResponse{Events: events, Responses: d.Responses}, nil
}
