package pipeline

import (
	"strings"

	"github.com/ukm-labs/advisor/internal/domain"
)

// Dispatcher decides who speaks next. It replaces model-driven speaker
// selection with a deterministic transition function so the conversation
// always follows the intended pipeline shape. Next is a pure function of its
// inputs: no hidden state, identical inputs yield identical output.
type Dispatcher struct {
	initiator string
	successor map[string]string
	markers   Markers
}

// NewDispatcher builds a dispatcher for the given nominal speaking order.
// The first role is the initiator; the last role's successor wraps back to
// it. order must contain at least one name.
func NewDispatcher(order []string, markers Markers) *Dispatcher {
	successor := make(map[string]string, len(order))
	for i, name := range order {
		if i+1 < len(order) {
			successor[name] = order[i+1]
		} else {
			successor[name] = order[0]
		}
	}
	return &Dispatcher{
		initiator: order[0],
		successor: successor,
		markers:   markers,
	}
}

// Next returns the role that speaks after last.
//
// Content overrides dominate positional order: a final-answer or terminate
// marker in the newest turn routes straight back to the initiator, as does
// the search tool's empty-result sentinel (skipping the roles that would
// otherwise consume a nonexistent result). Otherwise the nominal successor
// chain applies, with the initiator as the fail-safe for unknown speakers.
func (d *Dispatcher) Next(last string, transcript []domain.Turn) string {
	if len(transcript) == 0 {
		return d.initiator
	}

	newest := transcript[len(transcript)-1].Content
	if strings.Contains(newest, d.markers.FinalAnswer) || strings.Contains(newest, d.markers.Terminate) {
		return d.initiator
	}
	if strings.Contains(newest, d.markers.EmptyResult) {
		return d.initiator
	}

	if next, ok := d.successor[last]; ok {
		return next
	}
	return d.initiator
}
