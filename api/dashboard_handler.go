package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogd/services"
)

type dashboardHandler struct {
	responder Responder
	logger    zerolog.Logger
	dashboard *services.DashboardService
}

func newDashboardHandler(dashboard *services.DashboardService) dashboardHandler {
	logger := log.With().Str("handlerName", "dashboardHandler").Logger()

	return dashboardHandler{
		responder: NewResponder(logger),
		logger:    logger,
		dashboard: dashboard,
	}
}

// summary returns the caller's dashboard
// @Summary Dashboard
// @Description Admins get post and comment counters for their own posts, others get their activity
// @Tags Dashboard
// @Produce json
// @Security TokenAuth
// @Success 200 {object} services.DashboardStats
// @Failure 401 {object} ErrorResponse
// @Router /dashboard [get]
func (h dashboardHandler) summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.dashboard.Summarize(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}
