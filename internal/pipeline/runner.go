package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ukm-labs/advisor/internal/domain"
)

// Runner drives one recommendation session: it owns the ordered role list,
// appends to the shared transcript (single writer), and repeats "current
// role speaks, dispatcher picks next" until a terminal condition or the
// round limit. Events are emitted to the bridge handed to Run, scoped to
// that session.
type Runner struct {
	cfg Config
	gen Generator
}

// NewRunner creates a runner for one pipeline configuration. The same
// runner may serve many sessions; per-session state lives in Run.
func NewRunner(cfg Config, gen Generator) *Runner {
	return &Runner{cfg: cfg, gen: gen}
}

// Run executes a session to completion, emitting events on bridge as a side
// effect. It always emits exactly one done event, on every exit path; a
// panic inside the loop is recovered, reported as a log event, and still
// followed by done. Run never returns an error: every failure is surfaced
// on the bridge.
func (r *Runner) Run(ctx context.Context, story string, bridge *Bridge) {
	var result string

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Pipeline panic", "panic", rec)
			bridge.Emit(Event{Type: EventLog, Content: fmt.Sprintf("CRITICAL ERROR: %v", rec)})
		}
		bridge.Emit(Event{Type: EventDone, Content: "Selesai", Result: result})
	}()

	initiator := r.cfg.Initiator()
	dispatcher := NewDispatcher(r.roleOrder(), r.cfg.Markers)

	transcript := []domain.Turn{{Speaker: initiator.Name, Content: story}}
	bridge.Emit(Event{Type: EventLog, Speaker: initiator.Name, Content: story})

	last := initiator.Name
	for round := 0; round < r.cfg.MaxRounds; round++ {
		next := dispatcher.Next(last, transcript)
		if next == initiator.Name {
			// The initiator closing the phase is the normal end of a run.
			break
		}

		role := r.cfg.roleByName(next)
		content, err := r.speak(ctx, role, transcript)
		if err != nil {
			slog.Error("Turn failed", "role", role.Name, "error", err)
			bridge.Emit(Event{Type: EventLog, Content: fmt.Sprintf("CRITICAL ERROR: %s", err)})
			return
		}

		transcript = append(transcript, domain.Turn{Speaker: role.Name, Content: content})
		bridge.Emit(Event{Type: EventLog, Speaker: role.Name, Content: content})
		slog.Info("Turn complete", "round", round, "role", role.Name, "content_length", len(content))

		if res := extractFinalJSON(content, r.cfg.Markers.FinalAnswer); res != "" {
			result = res
		}
		if strings.Contains(content, r.cfg.Markers.Terminate) {
			break
		}
		last = role.Name
	}
}

// speak obtains one role's turn content: interceptor roles run their bound
// function, generative roles call the generation backend.
func (r *Runner) speak(ctx context.Context, role Role, transcript []domain.Turn) (string, error) {
	if role.Kind == RoleInterceptor {
		handled, content := Intercept(ctx, role, transcript, r.cfg.Markers)
		if handled {
			return content, nil
		}
		// The guard declined; the role passes with an empty turn.
		return "", nil
	}
	return r.gen.Generate(ctx, role.Instructions, transcript)
}

func (r *Runner) roleOrder() []string {
	order := make([]string, len(r.cfg.Roles))
	for i, role := range r.cfg.Roles {
		order[i] = role.Name
	}
	return order
}

// extractFinalJSON pulls the payload out of a fenced final-answer block
// (```<marker> ... ```). Returns "" when the marker is absent.
func extractFinalJSON(content, marker string) string {
	fence := "```" + marker
	start := strings.Index(content, fence)
	if start < 0 {
		return ""
	}
	rest := content[start+len(fence):]
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
