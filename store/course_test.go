package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSection(t *testing.T) {
	a := SelectedSection{Course: Course{ID: "CMSC131"}, Section: Section{SectionID: "0101"}}
	b := SelectedSection{Course: Course{ID: "CMSC131"}, Section: Section{SectionID: "0201"}}
	c := SelectedSection{Course: Course{ID: "MATH140"}, Section: Section{SectionID: "0101"}}

	assert.True(t, SameSection(a, a))
	assert.False(t, SameSection(a, b))
	assert.False(t, SameSection(a, c))

	assert.True(t, SectionIncluded(b, []SelectedSection{c, b}))
	assert.False(t, SectionIncluded(a, []SelectedSection{c, b}))
	assert.False(t, SectionIncluded(a, nil))
}
