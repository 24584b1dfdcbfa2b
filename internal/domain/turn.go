package domain

// Turn is one role's contribution to a session transcript. Turns are
// append-only and totally ordered by append time.
type Turn struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}
