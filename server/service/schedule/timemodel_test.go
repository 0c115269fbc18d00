package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/store"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"9am", 9 * 60},
		{"10:00am", 10 * 60},
		{"10:50am", 10*60 + 50},
		{"12:00pm", 12 * 60},
		{"12:15am", 15},
		{"12am", 0},
		{"1:05pm", 13*60 + 5},
		{"11:59PM", 23*60 + 59},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTime_Malformed(t *testing.T) {
	for _, input := range []string{"", "am", "10:00", "noon", "13:00pm", "0am", "10:5am", "10:60am", "ab:cdpm", "100am"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTime(input)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedTime))
		})
	}
}

func TestMinutesToLabel(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "12am"},
		{59, "12am"},
		{9 * 60, "9am"},
		{9*60 + 45, "9am"},
		{12 * 60, "12pm"},
		{14*60 + 30, "2pm"},
		{23*60 + 59, "11pm"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinutesToLabel(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestParseMeetingSpan(t *testing.T) {
	t.Run("spaced range", func(t *testing.T) {
		span, err := ParseMeetingSpan("MWF 10:00am - 10:50am")
		require.NoError(t, err)
		assert.Equal(t, []Day{Monday, Wednesday, Friday}, span.Days)
		assert.Equal(t, 600, span.Start)
		assert.Equal(t, 650, span.End)
	})

	t.Run("compact range", func(t *testing.T) {
		span, err := ParseMeetingSpan("TuTh 9:30am-10:45am")
		require.NoError(t, err)
		assert.Equal(t, []Day{Tuesday, Thursday}, span.Days)
		assert.Equal(t, 570, span.Start)
		assert.Equal(t, 645, span.End)
	})

	t.Run("day order is canonical", func(t *testing.T) {
		span, err := ParseMeetingSpan("ThTu 1pm - 2:15pm")
		require.NoError(t, err)
		assert.Equal(t, []Day{Tuesday, Thursday}, span.Days)
	})

	for _, raw := range []string{"TBA", "Class time/details on ELMS", "Sa 10:00am - 1:00pm", "Su 9am - 5pm", "", "   "} {
		t.Run("sentinel "+raw, func(t *testing.T) {
			span, err := ParseMeetingSpan(raw)
			require.NoError(t, err)
			assert.True(t, span.IsOther())
			assert.Zero(t, span.Start)
			assert.Zero(t, span.End)
		})
	}

	for _, raw := range []string{"MWF", "MWF 10:00 - 10:50am", "MWF 10:00am", "MWF 11:00am - 10:00am"} {
		t.Run("malformed "+raw, func(t *testing.T) {
			_, err := ParseMeetingSpan(raw)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedTime))
		})
	}
}

func TestExpandMeetingToBlocks(t *testing.T) {
	course := store.Course{ID: "CMSC131"}
	section := store.Section{SectionID: "0101"}
	meeting := store.Meeting{Time: "MWF 10:00am - 10:50am", Location: "IRB 0324"}

	blocks := ExpandMeetingToBlocks(course, section, meeting)
	require.Len(t, blocks, 3)
	for i, day := range []Day{Monday, Wednesday, Friday} {
		assert.Equal(t, TimeInterval{Day: day, Start: 600, End: 650}, blocks[i].TimeInterval)
		assert.Equal(t, "CMSC131", blocks[i].Course.ID)
		assert.Equal(t, "0101", blocks[i].Section.SectionID)
		assert.Equal(t, "IRB 0324", blocks[i].Meeting.Location)
	}

	assert.Equal(t, blocks, ExpandMeetingToBlocks(course, section, meeting), "expansion must be repeatable")

	t.Run("malformed becomes Other", func(t *testing.T) {
		blocks := ExpandMeetingToBlocks(course, section, store.Meeting{Time: "MWF 25:00am - 1pm"})
		require.Len(t, blocks, 1)
		assert.Equal(t, Other, blocks[0].Day)
	})
}

func TestExpandSections(t *testing.T) {
	selected := []store.SelectedSection{
		{
			Course: store.Course{ID: "CMSC131"},
			Section: store.Section{SectionID: "0101", Meetings: []store.Meeting{
				{Time: "MWF 10:00am - 10:50am"},
				{Time: "TuTh 8:00am - 8:50am"},
			}},
		},
		{
			Course:  store.Course{ID: "MATH140"},
			Section: store.Section{SectionID: "0201", Meetings: []store.Meeting{{Time: "TBA"}}},
		},
	}

	blocks := ExpandSections(selected)
	assert.Len(t, blocks, 6)
	assert.Equal(t, Other, blocks[5].Day)
}

func TestDayCode(t *testing.T) {
	assert.Equal(t, "MWF", DayCode("MWF 10:00am - 10:50am"))
	assert.Equal(t, "TuTh", DayCode("TuTh 9:30am-10:45am"))
	assert.Equal(t, "", DayCode("TBA"))
	assert.Equal(t, "", DayCode("Class time/details on ELMS"))
	assert.Equal(t, "", DayCode(""))
}

func TestMinifyTimeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MWF 10:00am - 10:50am", "10-10:50am"},
		{"TuTh 11:00am - 12:15pm", "11am-12:15pm"},
		{"TuTh 2:00pm-3:15pm", "2-3:15pm"},
		{"F 9:00am - 11:00am", "9-11am"},
		{"TBA", "TBA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinifyTimeCode(tt.input), tt.input)
	}
}
