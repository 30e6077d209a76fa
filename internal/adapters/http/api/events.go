package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/internal/domain/timeseries"
)

// EventDependencies defines the interface for raw event ingestion.
type EventDependencies interface {
	RecordEvent(ctx context.Context, e model.MetricEvent) error
}

// EventsHandler handles raw growth event ingestion.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is the POST /events body.
type eventRequest struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"owner_id"`
	TS      string `json:"ts"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.Kind) == "":
		return errors.New("missing kind")
	case strings.TrimSpace(e.OwnerID) == "":
		return errors.New("missing owner_id")
	case strings.TrimSpace(e.TS) == "":
		return errors.New("missing ts")
	}
	if _, ok := timeseries.ParseTimestamp(e.TS); !ok {
		return errors.New("invalid ts; must be RFC3339")
	}
	if _, ok := parseKind(e.Kind); !ok {
		return errors.New("kind must be prompt or conversation")
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostEvent handles POST /events requests. Signups are derived
// from account creation, so only prompt and conversation events are
// accepted here.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	kind, _ := parseKind(req.Kind)
	ts, _ := timeseries.ParseTimestamp(req.TS)
	err := h.deps.RecordEvent(r.Context(), model.MetricEvent{
		Kind:      kind,
		OwnerID:   req.OwnerID,
		Timestamp: ts,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "recorded"})
	case errors.Is(err, fault.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func parseKind(raw string) (model.MetricKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case model.KindPrompt.String():
		return model.KindPrompt, true
	case model.KindConversation.String():
		return model.KindConversation, true
	default:
		return 0, false
	}
}
