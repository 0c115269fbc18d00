package schedule

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/store"
)

// Day is a weekday a meeting occurs on.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "Tu"
	Wednesday Day = "W"
	Thursday  Day = "Th"
	Friday    Day = "F"
	// Other marks TBA, weekend, online-only or unparseable meetings.
	// It never overlaps and never conflicts.
	Other Day = "Other"
)

// weekdays is the fixed order day codes are tested in. "Tu" precedes "Th"
// and both follow "M" so compound tokens like "TuTh" split correctly.
var weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// TimeInterval is a span of minutes since midnight on one day.
type TimeInterval struct {
	Day   Day `json:"day"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// TimeBlock is a TimeInterval tagged with the selection it came from.
type TimeBlock struct {
	TimeInterval
	Course  store.Course
	Section store.Section
	Meeting store.Meeting
}

// MeetingSpan is the parsed form of a raw meeting time string.
type MeetingSpan struct {
	Days  []Day
	Start int
	End   int
}

// IsOther reports whether the span is the no-conflict sentinel.
func (s MeetingSpan) IsOther() bool {
	return len(s.Days) == 1 && s.Days[0] == Other
}

var otherSpan = MeetingSpan{Days: []Day{Other}}

// ParseTime converts a 12-hour clock string such as "9am" or "10:50pm" into
// minutes since midnight.
func ParseTime(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 3 {
		return 0, errors.MalformedTime(raw)
	}

	period := strings.ToLower(s[len(s)-2:])
	if period != "am" && period != "pm" {
		return 0, errors.MalformedTime(raw)
	}

	hourStr, minuteStr, hasMinute := strings.Cut(s[:len(s)-2], ":")
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 || len(hourStr) > 2 {
		return 0, errors.MalformedTime(raw)
	}
	minute := 0
	if hasMinute {
		if len(minuteStr) != 2 {
			return 0, errors.MalformedTime(raw)
		}
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute < 0 || minute > 59 {
			return 0, errors.MalformedTime(raw)
		}
	}

	if period == "pm" && hour != 12 {
		hour += 12
	}
	if period == "am" && hour == 12 {
		hour = 0
	}
	return hour*60 + minute, nil
}

// MinutesToLabel renders the floored hour of minutes, e.g. "9am" or "2pm".
func MinutesToLabel(minutes int) string {
	hour := minutes / 60
	if minutes < 0 && minutes%60 != 0 {
		hour--
	}
	hour = ((hour % 24) + 24) % 24

	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}
	return strconv.Itoa(hour) + suffix
}

// isOtherMeeting reports whether raw is a TBA, ELMS-only, weekend or blank meeting.
func isOtherMeeting(raw string) bool {
	return strings.Contains(raw, "TBA") ||
		strings.Contains(raw, elmsPlaceholder) ||
		strings.Contains(raw, "Sa") ||
		strings.Contains(raw, "Su") ||
		strings.TrimSpace(raw) == ""
}

// ParseMeetingSpan parses a raw meeting time such as "MWF 10:00am - 10:50am"
// or "TuTh 9:30am-10:45am". Sentinel meetings return the Other span.
func ParseMeetingSpan(raw string) (MeetingSpan, error) {
	if isOtherMeeting(raw) {
		return otherSpan, nil
	}

	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return MeetingSpan{}, errors.MalformedTime(raw)
	}

	startTok, endTok, ok := strings.Cut(strings.Join(fields[1:], ""), "-")
	if !ok {
		return MeetingSpan{}, errors.MalformedTime(raw)
	}
	start, err := ParseTime(startTok)
	if err != nil {
		return MeetingSpan{}, err
	}
	end, err := ParseTime(endTok)
	if err != nil {
		return MeetingSpan{}, err
	}
	if end < start {
		return MeetingSpan{}, errors.MalformedTime(raw).WithContext("reason", "end before start")
	}

	days := make([]Day, 0, len(weekdays))
	for _, day := range weekdays {
		if strings.Contains(fields[0], string(day)) {
			days = append(days, day)
		}
	}

	return MeetingSpan{Days: days, Start: start, End: end}, nil
}

// ExpandMeetingToBlocks returns one TimeBlock per day the meeting occurs on.
// A meeting that fails to parse yields a single Other block.
func ExpandMeetingToBlocks(course store.Course, section store.Section, meeting store.Meeting) []TimeBlock {
	span, err := ParseMeetingSpan(meeting.Time)
	if err != nil {
		slog.Debug("treating unparseable meeting as Other",
			slog.String("course_id", course.ID),
			slog.String("section_id", section.SectionID),
			slog.String("time", meeting.Time),
			slog.String("error", err.Error()),
		)
		span = otherSpan
	}

	blocks := make([]TimeBlock, 0, len(span.Days))
	for _, day := range span.Days {
		blocks = append(blocks, TimeBlock{
			TimeInterval: TimeInterval{Day: day, Start: span.Start, End: span.End},
			Course:       course,
			Section:      section,
			Meeting:      meeting,
		})
	}
	return blocks
}

// ExpandSections returns the TimeBlocks of every meeting of every selection.
func ExpandSections(selected []store.SelectedSection) []TimeBlock {
	var blocks []TimeBlock
	for _, sel := range selected {
		for _, meeting := range sel.Section.Meetings {
			blocks = append(blocks, ExpandMeetingToBlocks(sel.Course, sel.Section, meeting)...)
		}
	}
	return blocks
}

// DayCode returns the leading day token of raw when it is made up only of
// canonical day codes ("MWF", "TuTh"), and "" otherwise.
func DayCode(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	rest := fields[0]
	for _, day := range weekdays {
		rest = strings.TrimPrefix(rest, string(day))
	}
	if rest != "" {
		return ""
	}
	return fields[0]
}

var timeCodePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}|\d{1,2})(am|pm)\s*-\s*(\d{1,2}:\d{2}|\d{1,2})(am|pm)`)

// MinifyTimeCode shortens the time range in raw for compact display:
// "10:00am - 10:50am" becomes "10-10:50am". Input without a time range is
// returned unchanged.
func MinifyTimeCode(raw string) string {
	m := timeCodePattern.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	startTime, startPeriod, endTime, endPeriod := m[1], m[2], m[3], m[4]

	startTime = strings.TrimSuffix(startTime, ":00")
	endTime = strings.TrimSuffix(endTime, ":00")

	if strings.EqualFold(startPeriod, endPeriod) {
		startPeriod = ""
	}
	return startTime + startPeriod + "-" + endTime + endPeriod
}
