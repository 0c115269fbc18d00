package store

// Meeting is one recurring time and place of a section, as supplied by the
// course catalog. Time is the raw catalog string, e.g. "MWF 10:00am - 10:50am"
// or "TBA".
type Meeting struct {
	Time     string `json:"time"`
	Location string `json:"location"`
	Building string `json:"building,omitempty"`
	Room     string `json:"room,omitempty"`
}

// Section is one offering of a course.
type Section struct {
	SectionID   string    `json:"section_id"`
	Instructors []string  `json:"instructors"`
	Meetings    []Meeting `json:"meetings"`
	OpenSeats   int       `json:"open_seats"`
	TotalSeats  int       `json:"total_seats"`
	Waitlist    int       `json:"waitlist"`
	Holdfile    int       `json:"holdfile"`
}

// Course is a catalog course. ID is the course code, e.g. "CMSC131".
type Course struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Credits  int       `json:"credits"`
	Sections []Section `json:"sections,omitempty"`
}

// SelectedSection pairs a course with the section a student picked.
type SelectedSection struct {
	Course  Course  `json:"course"`
	Section Section `json:"section"`
}

// SameSection reports whether both selections name the same course and section.
func SameSection(a, b SelectedSection) bool {
	return a.Course.ID == b.Course.ID && a.Section.SectionID == b.Section.SectionID
}

// SectionIncluded reports whether sec is already part of selected.
func SectionIncluded(sec SelectedSection, selected []SelectedSection) bool {
	for _, other := range selected {
		if SameSection(sec, other) {
			return true
		}
	}
	return false
}
