// Package pipeline implements the deterministic multi-role recommendation
// pipeline: a fixed conversation of cooperating roles driven by an explicit
// turn dispatcher, with events streamed out through a per-session bridge.
package pipeline

import (
	"context"

	"github.com/ukm-labs/advisor/internal/domain"
)

// RoleKind tags how a role produces its turns.
type RoleKind string

const (
	// RoleGenerative indicates the role speaks via the generation backend.
	RoleGenerative RoleKind = "generative"
	// RoleInterceptor indicates the role's replies are produced by a bound
	// deterministic function instead of the generation backend.
	RoleInterceptor RoleKind = "interceptor"
)

// InterceptFunc produces an interceptor role's reply from the previous
// turn's content.
type InterceptFunc func(ctx context.Context, input string) string

// Role is a named participant in the pipeline. Roles are fixed at session
// configuration time and immutable during a run.
type Role struct {
	Name         string
	Kind         RoleKind
	Instructions string        // system prompt, generative roles only
	Intercept    InterceptFunc // bound function, interceptor roles only
}

// Markers are the designated content substrings the dispatcher and
// interceptor treat as control signals.
type Markers struct {
	// Terminate ends the session when it appears in a turn.
	Terminate string
	// FinalAnswer tags the writer's closing payload; dispatch returns to the
	// initiator as soon as it appears.
	FinalAnswer string
	// EmptyResult is the search tool's no-match sentinel; dispatch skips the
	// downstream roles when it appears.
	EmptyResult string
	// ToolResult tags a search payload; the interceptor declines to act when
	// the previous turn already carries it.
	ToolResult string
}

// Config is one named pipeline configuration: the ordered role list (the
// first role is the initiator and terminal sink), the round cap, and the
// control markers.
type Config struct {
	Roles     []Role
	MaxRounds int
	Markers   Markers
}

// Initiator returns the first role, which both opens and closes a phase.
func (c Config) Initiator() Role {
	return c.Roles[0]
}

// roleByName resolves a role, falling back to the initiator.
func (c Config) roleByName(name string) Role {
	for _, r := range c.Roles {
		if r.Name == name {
			return r
		}
	}
	return c.Roles[0]
}

// EventType tags a payload emitted on the stream bridge.
type EventType string

const (
	// EventLog carries informational text produced during a turn.
	EventLog EventType = "log"
	// EventDone marks the end of a session, exactly once per session.
	EventDone EventType = "done"
	// EventPing is a liveness heartbeat synthesized by the consumer on idle.
	EventPing EventType = "ping"
)

// Event is a tagged payload delivered to the stream consumer in emission
// order.
type Event struct {
	Type    EventType `json:"type"`
	Speaker string    `json:"speaker,omitempty"`
	Content string    `json:"content,omitempty"`
	Result  string    `json:"result,omitempty"`
}

// Generator is the text-generation backend at its interface: given a role's
// instructions and the transcript so far, it returns generated text.
type Generator interface {
	Generate(ctx context.Context, instructions string, transcript []domain.Turn) (string, error)
}
