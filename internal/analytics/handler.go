package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/macrolog-lab/macrolog/internal/core/errors"
)

// RegisterRoutes registers the analytics API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/analytics/aggregate", s.HandleGetAggregate)
}

// HandleGetAggregate handles GET /v1/analytics/aggregate?days_back=N.
// days_back is optional; omitted means "aggregate everything".
func (s *Service) HandleGetAggregate(c *gin.Context) {
	var daysBack *int
	if raw := c.Query("days_back"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "days_back must be an integer",
				Details:   err.Error(),
			})
			return
		}
		daysBack = &n
	}

	result, err := s.GetAggregate(c.Request.Context(), "", daysBack)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid aggregate query",
				Details:   err.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query aggregates",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
