package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/pkg/valueobjects"
	"github.com/urbanflow/urbanflow-backend/services"
	"github.com/urbanflow/urbanflow-backend/types"
)

// PlanRouteRequest is the body of a plan search. Text carries the free-form
// destination ("take me to Paulista at 6pm"); Origin is optional and falls
// back to the configured default when absent.
type PlanRouteRequest struct {
	Text      string             `json:"text" binding:"required"`
	Origin    *types.Coordinates `json:"origin,omitempty"`
	Filter    string             `json:"filter,omitempty"`
	IsPremium bool               `json:"isPremium,omitempty"`
}

type PlanRouteResponse struct {
	Routes []types.Itinerary `json:"routes"`
}

type RecentSearchesResponse struct {
	Searches []services.RecentSearch `json:"searches"`
}

type TripHandler struct {
	planner *services.PlannerService
}

func NewTripHandler(planner *services.PlannerService) *TripHandler {
	return &TripHandler{planner: planner}
}

// PlanRoutes handles POST /v1/routes/plan.
func (h *TripHandler) PlanRoutes(c *gin.Context) {
	var req PlanRouteRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	filter := types.FilterFastest
	if req.Filter != "" {
		filter = types.RouteFilter(req.Filter)
		if !filter.IsValid() {
			_ = c.Error(apperrors.ValidationFailed("invalid_filter", "unknown route filter: "+req.Filter))
			return
		}
	}

	if req.Origin != nil {
		if _, err := valueobjects.NewGeoPointFromCoordinates(*req.Origin); err != nil {
			_ = c.Error(err)
			return
		}
	}

	routes, err := h.planner.PlanTrip(c.Request.Context(), services.PlanInput{
		Text:      req.Text,
		Origin:    req.Origin,
		Filter:    filter,
		IsPremium: req.IsPremium,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, PlanRouteResponse{Routes: routes})
}

// RecentSearches handles GET /v1/routes/recent.
func (h *TripHandler) RecentSearches(c *gin.Context) {
	searches := h.planner.RecentSearches(c.Request.Context())
	c.JSON(http.StatusOK, RecentSearchesResponse{Searches: searches})
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}
