package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/scheduleterp/internal/profile"
	apperrors "github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/server/internal/observability"
	"github.com/hrygo/scheduleterp/server/service/schedule"
)

// APIV1Service exposes the conflict engine over HTTP.
type APIV1Service struct {
	Profile    *profile.Profile
	Classifier *schedule.Classifier
	Metrics    *observability.Metrics
}

// NewAPIV1Service creates a new API service.
func NewAPIV1Service(profile *profile.Profile, classifier *schedule.Classifier, metrics *observability.Metrics) *APIV1Service {
	if metrics == nil {
		metrics = observability.GlobalMetrics()
	}
	return &APIV1Service{
		Profile:    profile,
		Classifier: classifier,
		Metrics:    metrics,
	}
}

// RegisterRoutes registers the v1 routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo, mws ...echo.MiddlewareFunc) {
	group := echoServer.Group("/api/v1", mws...)
	group.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	group.POST("/conflicts/classify", s.ClassifyConflicts)
	group.POST("/conflicts/explain", s.ExplainConflict)
	group.POST("/conflicts/groups", s.GroupConflicts)
	group.GET("/time/label", s.GetTimeLabel)
	group.GET("/time/parse", s.ParseMeetingTime)
	group.GET("/system/metrics", s.GetMetrics)
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func httpStatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeMalformedTime:
		return http.StatusBadRequest
	case apperrors.ErrCodeOracleUnavailable, apperrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeContextCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	code := apperrors.GetCodeFromError(err, apperrors.ErrCodeInvalidArgument)
	status := httpStatusFromCode(code)

	logger := observability.LoggerFromContext(c.Request().Context())
	logger.Warn("request failed",
		observability.LogFieldErrorCode, string(code),
		"status", status,
		"error", err.Error(),
	)
	return c.JSON(status, errorResponse{Code: code, Message: err.Error()})
}
