package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ukm-labs/advisor/internal/domain"
)

// Sentinel payloads returned by the search tool. Downstream pipeline roles
// branch on these prefixes, so they are part of the tool's contract.
const (
	// ResultMarker prefixes a successful search payload.
	ResultMarker = "DATABASE_RESULT"
	// EmptyMarker prefixes the no-match payload.
	EmptyMarker = "DATABASE_STATUS: KOSONG"
	// ErrorMarker prefixes a data-access failure payload.
	ErrorMarker = "SYSTEM ERROR:"
	// Placeholder substitutes missing field values before matching.
	Placeholder = "Tidak disebutkan"
)

// matchAllTerms are keyword sentinels that select every record.
var matchAllTerms = map[string]bool{"all": true, "semua": true, "": true}

// searchRecord is the trimmed per-club view serialized into the result payload.
type searchRecord struct {
	Name       string `json:"nama_ukm"`
	Category   string `json:"kategori"`
	Schedule   string `json:"jadwal_latihan"`
	Desc       string `json:"deskripsi"`
	CoreValues string `json:"nilai_utama"`
}

// SearchTool performs keyword lookups against the club catalog. It never
// returns an error: both "no match" and "store unreadable" are reported as
// distinguishable sentinel payloads so the pipeline can keep moving.
type SearchTool struct {
	repo  Repository
	limit int
}

// NewSearchTool creates a search tool over the given repository. limit caps
// the number of records in a result payload.
func NewSearchTool(repo Repository, limit int) *SearchTool {
	if limit <= 0 {
		limit = 3
	}
	return &SearchTool{repo: repo, limit: limit}
}

// Search looks up clubs matching a comma-separated keyword list.
//
// Terms are trimmed and lowercased. A match-all sentinel term ("all",
// "semua", or empty) selects every club; any other term matches a club when
// it appears as a case-insensitive substring of one of the searchable text
// fields. Per-term matches are unioned, deduplicated by club name in
// first-seen order, and truncated to the configured cap.
func (t *SearchTool) Search(ctx context.Context, keywords string) string {
	slog.Info("Catalog search", "keywords", keywords)

	clubs, err := t.repo.List(ctx)
	if err != nil {
		slog.Error("Catalog search failed", "error", err)
		return fmt.Sprintf("%s %s", ErrorMarker, err.Error())
	}

	terms := strings.Split(keywords, ",")
	seen := make(map[string]bool, len(clubs))
	var matched []domain.Club

	for _, raw := range terms {
		term := strings.ToLower(strings.TrimSpace(raw))
		for _, c := range clubs {
			if seen[c.Name] {
				continue
			}
			if matchAllTerms[term] || clubMatches(c, term) {
				seen[c.Name] = true
				matched = append(matched, c)
			}
		}
	}

	if len(matched) == 0 {
		return EmptyMarker + ". Tidak ada UKM yang cocok dengan kriteria. TERMINATE"
	}

	if len(matched) > t.limit {
		matched = matched[:t.limit]
	}

	records := make([]searchRecord, 0, len(matched))
	for _, c := range matched {
		records = append(records, searchRecord{
			Name:       orPlaceholder(c.Name),
			Category:   orPlaceholder(c.Category),
			Schedule:   orPlaceholder(c.Schedule),
			Desc:       orPlaceholder(c.Desc),
			CoreValues: orPlaceholder(c.CoreValues),
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		slog.Error("Catalog result serialization failed", "error", err)
		return fmt.Sprintf("%s %s", ErrorMarker, err.Error())
	}

	slog.Info("Catalog search done", "matches", len(records))
	return fmt.Sprintf("%s:\n%s", ResultMarker, payload)
}

// clubMatches reports whether term occurs in any searchable field. Missing
// values are substituted with the placeholder first so absence never breaks
// a lookup.
func clubMatches(c domain.Club, term string) bool {
	fields := []string{c.Name, c.Category, c.Activity, c.Desc, c.CoreValues}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(orPlaceholder(f)), term) {
			return true
		}
	}
	return false
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}
