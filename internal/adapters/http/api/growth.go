package api

import (
	"context"
	"net/http"

	"github.com/edithlab/growthboard/internal/domain/timeseries"
	"github.com/edithlab/growthboard/pkg/logger"
)

// GrowthDependencies defines the interface for the dashboard read model.
type GrowthDependencies interface {
	GrowthReport(ctx context.Context) (timeseries.Report, error)
	PointsCount(ctx context.Context) (int64, error)
}

// GrowthHandler handles growth dashboard requests.
type GrowthHandler struct {
	deps GrowthDependencies
}

// NewGrowthHandler creates a new growth handler.
func NewGrowthHandler(deps GrowthDependencies) *GrowthHandler {
	return &GrowthHandler{deps: deps}
}

type growthResponse struct {
	UsersCount        int        `json:"usersCount"`
	PromptCount       int        `json:"promptCount"`
	ConversationCount int        `json:"conversationCount"`
	PointsCount       int64      `json:"pointsCount"`
	DailyData         growthData `json:"dailyData"`
}

type growthData struct {
	Users         []timeseries.Point `json:"users"`
	Prompts       []timeseries.Point `json:"prompts"`
	Conversations []timeseries.Point `json:"conversations"`
}

// HandleGetGrowth handles GET /growth requests.
func (h *GrowthHandler) HandleGetGrowth(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_growth"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	report, err := h.deps.GrowthReport(r.Context())
	if err != nil {
		logger.Get().Error(r.Context(), "growth report failed", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	points, err := h.deps.PointsCount(r.Context())
	if err != nil {
		logger.Get().Error(r.Context(), "points count failed", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, growthResponse{
		UsersCount:        report.UsersCount,
		PromptCount:       report.PromptCount,
		ConversationCount: report.ConversationCount,
		PointsCount:       points,
		DailyData: growthData{
			Users:         report.Users,
			Prompts:       report.Prompts,
			Conversations: report.Conversations,
		},
	})
}
