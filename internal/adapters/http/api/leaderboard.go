package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/edithlab/growthboard/internal/domain/leaderboard"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/pkg/logger"
)

// defaultTopRankedLimit is how many users the top-performers strip shows.
const defaultTopRankedLimit = 5

// LeaderboardDependencies defines the interface for the leaderboard read model.
type LeaderboardDependencies interface {
	OwnerSubmissions(ctx context.Context, ownerID string) ([]model.Submission, error)
	SocialUserCount(ctx context.Context) (int64, error)
	TopRanked(ctx context.Context, limit int) ([]model.RankedUser, error)
	Cycles(ctx context.Context) ([]leaderboard.Cycle, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	topLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, topLimit int) *LeaderboardHandler {
	if topLimit < 1 {
		topLimit = defaultTopRankedLimit
	}
	return &LeaderboardHandler{deps: deps, topLimit: topLimit}
}

type leaderboardResponse struct {
	Success         bool                `json:"success"`
	Submissions     []model.Submission  `json:"submissions"`
	SocialUserCount int64               `json:"socialUserCount"`
	TopRankedUsers  []model.RankedUser  `json:"topRankedUsers"`
	RotationPeriods []leaderboard.Cycle `json:"rotationPeriods"`
}

// HandleGetLeaderboard handles GET /leaderboard?email= requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMissingUser))
		return
	}

	ctx := r.Context()
	subs, err := h.deps.OwnerSubmissions(ctx, email)
	if err != nil {
		h.fail(w, r, "load owner submissions failed", Wrap(op, err))
		return
	}
	socialUsers, err := h.deps.SocialUserCount(ctx)
	if err != nil {
		h.fail(w, r, "count social users failed", Wrap(op, err))
		return
	}
	top, err := h.deps.TopRanked(ctx, h.topLimit)
	if err != nil {
		h.fail(w, r, "load top ranked failed", Wrap(op, err))
		return
	}
	cycles, err := h.deps.Cycles(ctx)
	if err != nil {
		h.fail(w, r, "load rotation periods failed", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Success:         true,
		Submissions:     subs,
		SocialUserCount: socialUsers,
		TopRankedUsers:  top,
		RotationPeriods: leaderboard.SortCycles(cycles),
	})
}

// fail logs the full error chain and answers with a generic body; op
// strings and driver detail never reach the client.
func (h *LeaderboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.Get().Error(r.Context(), msg, logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}
