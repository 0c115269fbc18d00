package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetMetrics returns the engine counters.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
