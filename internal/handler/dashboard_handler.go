package handler

import (
	"net/http"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/dashboard"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/middleware"
	"github.com/Noviath61/finsight/internal/model"
	"github.com/Noviath61/finsight/internal/service"
	"github.com/Noviath61/finsight/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultSessionCookie names the dashboard session cookie
const DefaultSessionCookie = "finsight_session"

// DashboardHandler serves the per-session dashboard state
type DashboardHandler struct {
	registry            *dashboard.Registry
	fundamentalsService *service.FundamentalsService
	cookieName          string
	sessionTTL          time.Duration
	logger              *zap.Logger
}

type dashboardResponse struct {
	State             dashboard.State      `json:"state"`
	Suggestions       []model.SymbolRecord `json:"suggestions,omitempty"`
	Fundamentals      *model.Fundamentals  `json:"fundamentals,omitempty"`
	FundamentalsError string               `json:"fundamentals_error,omitempty"`
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	registry *dashboard.Registry,
	fundamentalsService *service.FundamentalsService,
	cookieName string,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *DashboardHandler {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &DashboardHandler{
		registry:            registry,
		fundamentalsService: fundamentalsService,
		cookieName:          cookieName,
		sessionTTL:          sessionTTL,
		logger:              logger,
	}
}

// controller resolves the caller's session, issuing a cookie for new ones
func (h *DashboardHandler) controller(c *gin.Context) *dashboard.Controller {
	current, _ := c.Cookie(h.cookieName)
	ctrl, id := h.registry.Get(current)
	if id != current {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, id, int(h.sessionTTL.Seconds()), "/", "", false, true)
	}
	return ctrl
}

// wait blocks until done or the request is gone, then returns the latest state
func (h *DashboardHandler) wait(c *gin.Context, ctrl *dashboard.Controller, done <-chan struct{}) dashboard.State {
	select {
	case <-done:
	case <-c.Request.Context().Done():
	}
	return ctrl.State()
}

// Get returns the current dashboard state
// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	ctrl := h.controller(c)
	c.JSON(http.StatusOK, dashboardResponse{State: ctrl.State()})
}

// Query records typed text and returns suggestions
// POST /api/v1/dashboard/query
func (h *DashboardHandler) Query(c *gin.Context) {
	var request struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctrl := h.controller(c)
	st, suggestions := ctrl.Type(request.Query)
	c.JSON(http.StatusOK, dashboardResponse{State: st, Suggestions: suggestions})
}

// Confirm looks up a symbol, or the typed text when none is given
// POST /api/v1/dashboard/confirm
func (h *DashboardHandler) Confirm(c *gin.Context) {
	var request struct {
		Symbol string `json:"symbol"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.SendMessage(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	ctrl := h.controller(c)
	_, done := ctrl.Confirm(request.Symbol)
	c.JSON(http.StatusOK, h.respond(c, h.wait(c, ctrl, done)))
}

// SelectGranularity changes the chart granularity
// PUT /api/v1/dashboard/granularity
func (h *DashboardHandler) SelectGranularity(c *gin.Context) {
	var request struct {
		Granularity string `json:"granularity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, apperr.ErrInvalidGranularity)
		return
	}
	g, err := market.Parse(request.Granularity)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	ctrl := h.controller(c)
	_, done := ctrl.SelectGranularity(g)
	c.JSON(http.StatusOK, h.respond(c, h.wait(c, ctrl, done)))
}

// SwitchView changes the active panel. The fundamentals view requires a
// signed-in user.
// PUT /api/v1/dashboard/view
func (h *DashboardHandler) SwitchView(c *gin.Context) {
	var request struct {
		View string `json:"view" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendMessage(c, http.StatusBadRequest, "View is required")
		return
	}
	view, ok := dashboard.ParseView(request.View)
	if !ok {
		utils.SendMessage(c, http.StatusBadRequest, "Unsupported view")
		return
	}
	if view == dashboard.ViewFundamentals {
		if _, ok := middleware.GetClaims(c); !ok {
			utils.SendError(c, apperr.ErrSessionInvalid)
			return
		}
	}

	ctrl := h.controller(c)
	c.JSON(http.StatusOK, h.respond(c, ctrl.SwitchView(view)))
}

// respond attaches fundamentals when a signed-in user is on that view
func (h *DashboardHandler) respond(c *gin.Context, st dashboard.State) dashboardResponse {
	resp := dashboardResponse{State: st}
	if st.ActiveView != dashboard.ViewFundamentals || st.ConfirmedSymbol == "" {
		return resp
	}
	if _, ok := middleware.GetClaims(c); !ok {
		return resp
	}

	f, err := h.fundamentalsService.Get(c.Request.Context(), st.ConfirmedSymbol)
	if err != nil {
		resp.FundamentalsError = apperr.Message(err)
		return resp
	}
	resp.Fundamentals = f
	return resp
}
