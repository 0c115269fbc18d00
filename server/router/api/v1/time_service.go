package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/server/service/schedule"
)

// TimeLabelResponse is the hour label of a minute offset.
type TimeLabelResponse struct {
	Label string `json:"label"`
}

// MeetingTimeResponse is a parsed raw meeting time.
type MeetingTimeResponse struct {
	Days     []schedule.Day `json:"days"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
	DayCode  string         `json:"day_code"`
	Minified string         `json:"minified"`
}

// GetTimeLabel renders minutes since midnight as an hour label.
// GET /api/v1/time/label?minutes=N
func (s *APIV1Service) GetTimeLabel(c echo.Context) error {
	minutes, err := strconv.Atoi(c.QueryParam("minutes"))
	if err != nil {
		return writeError(c, apperrors.InvalidArgument("minutes must be an integer"))
	}
	return c.JSON(http.StatusOK, TimeLabelResponse{Label: schedule.MinutesToLabel(minutes)})
}

// ParseMeetingTime parses a raw catalog meeting time.
// GET /api/v1/time/parse?time=MWF%2010:00am%20-%2010:50am
func (s *APIV1Service) ParseMeetingTime(c echo.Context) error {
	raw := c.QueryParam("time")
	span, err := schedule.ParseMeetingSpan(raw)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MeetingTimeResponse{
		Days:     span.Days,
		Start:    span.Start,
		End:      span.End,
		DayCode:  schedule.DayCode(raw),
		Minified: schedule.MinifyTimeCode(raw),
	})
}
