package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edithlab/growthboard/internal/domain/submission"
)

// SubmissionDependencies defines the interface for the submission write path.
type SubmissionDependencies interface {
	Submit(ctx context.Context, ownerID, rawURL string) (submission.Result, error)
}

// SubmissionsHandler handles social post submissions.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// submissionRequest is the POST /submissions body.
type submissionRequest struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Email) == "":
		return errors.New("missing email")
	case strings.TrimSpace(s.URL) == "":
		return errors.New("missing url")
	}
	return nil
}

// HandlePostSubmission handles POST /submissions requests.
//
// Validation outcomes are soft failures: the route answers 200 with
// success=false and a user-facing message, matching what the submitting
// page renders. Only a broken request envelope or a persistence fault
// yields a non-200 status.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Submit(r.Context(), req.Email, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if !result.Accepted() {
		writeJSON(w, http.StatusOK, softResponse{Success: false, Message: result.Reason.Message()})
		return
	}
	writeJSON(w, http.StatusOK, softResponse{Success: true, Message: "New content added successfully"})
}
