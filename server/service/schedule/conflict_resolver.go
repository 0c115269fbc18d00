package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/scheduleterp/server/internal/observability"
	"github.com/hrygo/scheduleterp/store"
)

// ConflictState is the severity of adding a meeting to a schedule.
// States are ordered: None < Caution < Warning < Blocking.
type ConflictState int

const (
	// None means the meeting has no fixed time and was not compared.
	None ConflictState = iota
	// Caution is the default verdict: compared and no problem found.
	Caution
	// Warning means a neighbouring meeting may be too far away to reach in time.
	Warning
	// Blocking means the meeting overlaps a selected meeting of another course.
	Blocking
)

var conflictStateNames = [...]string{"none", "caution", "warning", "blocking"}

func (s ConflictState) String() string {
	if s < None || s > Blocking {
		return fmt.Sprintf("ConflictState(%d)", int(s))
	}
	return conflictStateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s ConflictState) MarshalText() ([]byte, error) {
	if s < None || s > Blocking {
		return nil, fmt.Errorf("invalid conflict state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ConflictState) UnmarshalText(text []byte) error {
	for i, name := range conflictStateNames {
		if strings.EqualFold(name, string(text)) {
			*s = ConflictState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown conflict state %q", text)
}

// Max returns the more severe of two states.
func Max(a, b ConflictState) ConflictState {
	if a > b {
		return a
	}
	return b
}

// NearMiss is a pair of same-day meetings separated by a short gap.
type NearMiss struct {
	Candidate TimeBlock
	Selected  TimeBlock
	Gap       int
	// TravelMinutes is only meaningful when HasTravel is set.
	TravelMinutes int
	HasTravel     bool
}

// TooTight reports whether the gap is not enough to walk between the meetings.
func (n NearMiss) TooTight() bool {
	return n.HasTravel && n.Gap <= n.TravelMinutes
}

// Verdict is a classification together with the evidence behind it.
type Verdict struct {
	State      ConflictState
	Conflicts  []TimeBlock
	NearMisses []NearMiss
}

// Classifier decides how adding a meeting affects a set of selected sections.
// It holds no per-call state and is safe for concurrent use.
type Classifier struct {
	oracle      TravelOracle
	concurrency int
	metrics     *observability.Metrics
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithConcurrency bounds concurrent travel-time lookups per classification.
func WithConcurrency(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClassifierMetrics records classification counters into m.
func WithClassifierMetrics(m *observability.Metrics) ClassifierOption {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// NewClassifier creates a classifier. A nil oracle disables travel-time
// warnings.
func NewClassifier(oracle TravelOracle, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		oracle:      oracle,
		concurrency: 4,
		metrics:     observability.GlobalMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the conflict state of adding meeting, which belongs to
// candidate, to the selected sections.
func (c *Classifier) Classify(ctx context.Context, candidate store.SelectedSection, meeting store.Meeting, selected []store.SelectedSection) ConflictState {
	return c.ClassifyDetailed(ctx, candidate, meeting, selected).State
}

// ClassifySection classifies every meeting of candidate independently and
// returns the states in meeting order.
func (c *Classifier) ClassifySection(ctx context.Context, candidate store.SelectedSection, selected []store.SelectedSection) []ConflictState {
	states := make([]ConflictState, len(candidate.Section.Meetings))

	g, gctx := errgroup.WithContext(ctx)
	for i, meeting := range candidate.Section.Meetings {
		g.Go(func() error {
			states[i] = c.Classify(gctx, candidate, meeting, selected)
			return nil
		})
	}
	_ = g.Wait()

	return states
}

// ClassifyDetailed is Classify with the overlapping blocks and near misses
// that produced the verdict.
//
// Overlaps are found synchronously. Travel times are only looked up when no
// overlap was found, concurrently, and folded with Max, so the result does
// not depend on lookup order. A canceled context ends the lookups early and
// the verdict reflects the evidence gathered so far.
func (c *Classifier) ClassifyDetailed(ctx context.Context, candidate store.SelectedSection, meeting store.Meeting, selected []store.SelectedSection) Verdict {
	start := time.Now()

	candidateBlocks := ExpandMeetingToBlocks(candidate.Course, candidate.Section, meeting)
	if isOtherOnly(candidateBlocks) {
		return c.finish(ctx, candidate, Verdict{State: None}, start)
	}

	verdict := Verdict{State: Caution}
	for _, other := range ExpandSections(selected) {
		// Sections of the same course are alternatives, not additions.
		if other.Course.ID == candidate.Course.ID {
			continue
		}
		for _, block := range candidateBlocks {
			switch {
			case Overlaps(block.TimeInterval, other.TimeInterval):
				verdict.State = Blocking
				verdict.Conflicts = append(verdict.Conflicts, other)
			case isNearMiss(block.TimeInterval, other.TimeInterval):
				verdict.NearMisses = append(verdict.NearMisses, NearMiss{
					Candidate: block,
					Selected:  other,
					Gap:       GapMinutes(block.TimeInterval, other.TimeInterval),
				})
			}
		}
	}

	if verdict.State < Blocking && len(verdict.NearMisses) > 0 && c.oracle != nil {
		c.checkTravel(ctx, verdict.NearMisses)
		for _, nm := range verdict.NearMisses {
			if nm.TooTight() {
				verdict.State = Max(verdict.State, Warning)
			}
		}
	}

	return c.finish(ctx, candidate, verdict, start)
}

// checkTravel fills in travel times for each near miss. Each goroutine
// writes only its own element.
func (c *Classifier) checkTravel(ctx context.Context, nearMisses []NearMiss) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range nearMisses {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			nm := &nearMisses[i]
			// Travel keys are directional; the walk starts at whichever
			// meeting comes first in the day.
			from, to := nm.Candidate, nm.Selected
			if to.Start < from.Start {
				from, to = to, from
			}
			nm.TravelMinutes, nm.HasTravel = c.oracle.TravelMinutes(gctx, from.Meeting.Location, to.Meeting.Location)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Classifier) finish(ctx context.Context, candidate store.SelectedSection, verdict Verdict, start time.Time) Verdict {
	elapsed := time.Since(start)
	c.metrics.RecordClassification(verdict.State.String(), elapsed)

	observability.LoggerFromContext(ctx).Debug("meeting classified",
		slog.String(observability.LogFieldCourseID, candidate.Course.ID),
		slog.String(observability.LogFieldSectionID, candidate.Section.SectionID),
		slog.String(observability.LogFieldVerdict, verdict.State.String()),
		slog.Int("conflict_count", len(verdict.Conflicts)),
		slog.Int("near_miss_count", len(verdict.NearMisses)),
		slog.Int64(observability.LogFieldDuration, elapsed.Milliseconds()),
	)
	return verdict
}

func isOtherOnly(blocks []TimeBlock) bool {
	for _, b := range blocks {
		if b.Day != Other {
			return false
		}
	}
	return len(blocks) > 0
}
