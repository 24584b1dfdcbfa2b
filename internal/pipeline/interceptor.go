package pipeline

import (
	"context"
	"strings"

	"github.com/ukm-labs/advisor/internal/domain"
)

// Intercept decides the reply for an interceptor role's turn. The generation
// backend is never consulted: the previous turn's content is fed to the
// role's bound function and the return value becomes the role's utterance.
//
// Guard: if the previous content already carries the tool-result marker the
// interceptor declines (handled=false), so the tool can never feed on its
// own output.
func Intercept(ctx context.Context, role Role, transcript []domain.Turn, markers Markers) (handled bool, content string) {
	if role.Intercept == nil || len(transcript) == 0 {
		return false, ""
	}

	input := strings.TrimSpace(transcript[len(transcript)-1].Content)
	if strings.Contains(input, markers.ToolResult) {
		return false, ""
	}

	return true, role.Intercept(ctx, input)
}
