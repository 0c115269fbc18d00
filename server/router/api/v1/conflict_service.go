package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/server/service/schedule"
	"github.com/hrygo/scheduleterp/store"
)

// ClassifyRequest asks how adding a candidate section affects a selection.
// When MeetingIndex is nil every meeting of the candidate is classified.
type ClassifyRequest struct {
	Candidate    store.SelectedSection   `json:"candidate"`
	MeetingIndex *int                    `json:"meeting_index,omitempty"`
	Selected     []store.SelectedSection `json:"selected"`
}

// ClassifyResponse holds one state per classified meeting, in meeting order.
type ClassifyResponse struct {
	States []schedule.ConflictState `json:"states"`
}

// BlockResponse is the wire form of a schedule.TimeBlock.
type BlockResponse struct {
	Day        schedule.Day `json:"day"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	StartLabel string       `json:"start_label"`
	EndLabel   string       `json:"end_label"`
	CourseID   string       `json:"course_id"`
	SectionID  string       `json:"section_id"`
	Time       string       `json:"time"`
	Location   string       `json:"location"`
}

// NearMissResponse is the wire form of a schedule.NearMiss.
type NearMissResponse struct {
	Selected BlockResponse `json:"selected"`
	Gap      int           `json:"gap"`
	// TravelMinutes is null when no estimate was available.
	TravelMinutes *int `json:"travel_minutes"`
	TooTight      bool `json:"too_tight"`
}

// ExplainResponse is a verdict with the selections that caused it.
type ExplainResponse struct {
	State      schedule.ConflictState `json:"state"`
	Conflicts  []BlockResponse        `json:"conflicts"`
	NearMisses []NearMissResponse     `json:"near_misses"`
}

// GroupsRequest carries the selection to group.
type GroupsRequest struct {
	Selected []store.SelectedSection `json:"selected"`
}

// GroupsResponse lists the overlap groups of a selection.
type GroupsResponse struct {
	Groups [][]BlockResponse `json:"groups"`
}

// ClassifyConflicts classifies the meetings of a candidate section.
// POST /api/v1/conflicts/classify
func (s *APIV1Service) ClassifyConflicts(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("invalid request body"))
	}
	if err := validateCandidate(req.Candidate, req.MeetingIndex, req.Selected); err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	var states []schedule.ConflictState
	if req.MeetingIndex != nil {
		meeting := req.Candidate.Section.Meetings[*req.MeetingIndex]
		states = []schedule.ConflictState{s.Classifier.Classify(ctx, req.Candidate, meeting, req.Selected)}
	} else {
		states = s.Classifier.ClassifySection(ctx, req.Candidate, req.Selected)
	}
	// Travel lookups give up on a canceled request, so the states may be short
	// on evidence.
	if err := ctx.Err(); err != nil {
		return writeError(c, apperrors.ContextCanceled(err))
	}
	return c.JSON(http.StatusOK, ClassifyResponse{States: states})
}

// ExplainConflict classifies one meeting and reports the evidence.
// POST /api/v1/conflicts/explain
func (s *APIV1Service) ExplainConflict(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("invalid request body"))
	}
	if req.MeetingIndex == nil {
		return writeError(c, apperrors.InvalidArgument("meeting_index is required"))
	}
	if err := validateCandidate(req.Candidate, req.MeetingIndex, req.Selected); err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	meeting := req.Candidate.Section.Meetings[*req.MeetingIndex]
	verdict := s.Classifier.ClassifyDetailed(ctx, req.Candidate, meeting, req.Selected)
	if err := ctx.Err(); err != nil {
		return writeError(c, apperrors.ContextCanceled(err))
	}

	resp := ExplainResponse{
		State:      verdict.State,
		Conflicts:  make([]BlockResponse, 0, len(verdict.Conflicts)),
		NearMisses: make([]NearMissResponse, 0, len(verdict.NearMisses)),
	}
	for _, block := range verdict.Conflicts {
		resp.Conflicts = append(resp.Conflicts, convertBlock(block))
	}
	for _, nm := range verdict.NearMisses {
		item := NearMissResponse{
			Selected: convertBlock(nm.Selected),
			Gap:      nm.Gap,
			TooTight: nm.TooTight(),
		}
		if nm.HasTravel {
			minutes := nm.TravelMinutes
			item.TravelMinutes = &minutes
		}
		resp.NearMisses = append(resp.NearMisses, item)
	}
	return c.JSON(http.StatusOK, resp)
}

// GroupConflicts partitions the blocks of a selection into overlap groups.
// POST /api/v1/conflicts/groups
func (s *APIV1Service) GroupConflicts(c echo.Context) error {
	var req GroupsRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("invalid request body"))
	}

	groups := schedule.GroupOverlapping(schedule.ExpandSections(req.Selected))
	resp := GroupsResponse{Groups: make([][]BlockResponse, 0, len(groups))}
	for _, group := range groups {
		blocks := make([]BlockResponse, 0, len(group))
		for _, block := range group {
			blocks = append(blocks, convertBlock(block))
		}
		resp.Groups = append(resp.Groups, blocks)
	}
	return c.JSON(http.StatusOK, resp)
}

func validateCandidate(candidate store.SelectedSection, meetingIndex *int, selected []store.SelectedSection) error {
	if candidate.Course.ID == "" {
		return apperrors.InvalidArgument("candidate course _id is required")
	}
	if store.SectionIncluded(candidate, selected) {
		return apperrors.InvalidArgument("candidate section is already selected").
			WithContext("course_id", candidate.Course.ID).
			WithContext("section_id", candidate.Section.SectionID)
	}
	if meetingIndex != nil {
		if i := *meetingIndex; i < 0 || i >= len(candidate.Section.Meetings) {
			return apperrors.InvalidArgument("meeting_index out of range").
				WithContext("meeting_index", i).
				WithContext("meetings", len(candidate.Section.Meetings))
		}
	}
	return nil
}

func convertBlock(block schedule.TimeBlock) BlockResponse {
	resp := BlockResponse{
		Day:       block.Day,
		Start:     block.Start,
		End:       block.End,
		CourseID:  block.Course.ID,
		SectionID: block.Section.SectionID,
		Time:      block.Meeting.Time,
		Location:  block.Meeting.Location,
	}
	if block.Day != schedule.Other {
		resp.StartLabel = schedule.MinutesToLabel(block.Start)
		resp.EndLabel = schedule.MinutesToLabel(block.End)
	}
	return resp
}
