package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ukm-labs/advisor/internal/domain"
)

// fakeRepo serves a fixed club list without a database.
type fakeRepo struct {
	clubs []domain.Club
	err   error
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Club, error) { return f.clubs, f.err }
func (f *fakeRepo) Count(ctx context.Context) (int, error)          { return len(f.clubs), f.err }
func (f *fakeRepo) ReplaceAll(ctx context.Context, clubs []domain.Club) error {
	f.clubs = clubs
	return f.err
}
func (f *fakeRepo) Ping(ctx context.Context) error { return f.err }
func (f *fakeRepo) Close() error                   { return nil }

func testClubs() []domain.Club {
	return []domain.Club{
		{Name: "UKM Futsal", Category: "Olahraga", Activity: "Latihan rutin", Schedule: "Rabu 16:00", Desc: "Futsal untuk semua tingkat", CoreValues: "Sportivitas"},
		{Name: "UKM Band", Category: "Seni", Activity: "Musik", Schedule: "Jumat 15:00", Desc: "Band kampus", CoreValues: "Kreativitas"},
		{Name: "UKM Robotika", Category: "Teknologi", Activity: "Rakit robot", Schedule: "Sabtu 10:00", Desc: "Robotika dan elektronika", CoreValues: "Inovasi"},
		{Name: "UKM Paduan Suara", Category: "Seni", Activity: "Musik vokal", Schedule: "Senin 17:00", Desc: "Paduan suara mahasiswa", CoreValues: "Harmoni"},
	}
}

func decodeResult(t *testing.T, payload string) []map[string]string {
	t.Helper()

	if !strings.HasPrefix(payload, ResultMarker) {
		t.Fatalf("payload missing result marker: %q", payload)
	}
	raw := strings.TrimPrefix(payload, ResultMarker+":\n")
	var records []map[string]string
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("failed to decode result payload: %v", err)
	}
	return records
}

func TestSearchSingleKeyword(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	records := decodeResult(t, tool.Search(context.Background(), "futsal"))

	if len(records) != 1 || records[0]["nama_ukm"] != "UKM Futsal" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestSearchUnionsCommaSeparatedTerms(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	records := decodeResult(t, tool.Search(context.Background(), "Olahraga, Musik"))

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r["nama_ukm"])
	}
	// First-seen order: futsal matches the first term, band and paduan
	// suara match the second.
	want := []string{"UKM Futsal", "UKM Band", "UKM Paduan Suara"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestSearchMatchAllSentinels(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []string{"all", "semua", ""} {
		tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
		records := decodeResult(t, tool.Search(context.Background(), sentinel))
		if len(records) != len(testClubs()) {
			t.Errorf("sentinel %q returned %d records, want %d", sentinel, len(records), len(testClubs()))
		}
	}
}

func TestSearchDeduplicatesByName(t *testing.T) {
	t.Parallel()

	// "seni" and "musik" both match UKM Band and UKM Paduan Suara.
	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	records := decodeResult(t, tool.Search(context.Background(), "seni, musik"))

	seen := make(map[string]bool)
	for _, r := range records {
		name := r["nama_ukm"]
		if seen[name] {
			t.Fatalf("duplicate primary key in result: %q", name)
		}
		seen[name] = true
	}
}

func TestSearchHonorsResultCap(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 2)
	records := decodeResult(t, tool.Search(context.Background(), "all"))
	if len(records) != 2 {
		t.Fatalf("cap not honored: got %d records", len(records))
	}
}

func TestSearchEmptyResultSentinel(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	payload := tool.Search(context.Background(), "quidditch")

	if !strings.HasPrefix(payload, EmptyMarker) {
		t.Fatalf("expected empty sentinel, got %q", payload)
	}
	if !strings.Contains(payload, "TERMINATE") {
		t.Fatalf("empty sentinel must carry the terminate marker: %q", payload)
	}
}

func TestSearchStoreFailureSentinel(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{err: errors.New("disk on fire")}, 10)
	payload := tool.Search(context.Background(), "musik")

	if !strings.HasPrefix(payload, ErrorMarker) {
		t.Fatalf("expected error sentinel, got %q", payload)
	}
	if !strings.Contains(payload, "disk on fire") {
		t.Fatalf("error sentinel must carry the failure description: %q", payload)
	}
}

func TestSearchSubstitutesPlaceholderForMissingFields(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{clubs: []domain.Club{{Name: "UKM Misterius"}}}
	tool := NewSearchTool(repo, 10)

	// Matching on the placeholder itself must work: absence never errors.
	records := decodeResult(t, tool.Search(context.Background(), "tidak disebutkan"))
	if len(records) != 1 {
		t.Fatalf("expected placeholder match, got %v", records)
	}
	if records[0]["deskripsi"] != Placeholder {
		t.Fatalf("missing field not substituted: %v", records[0])
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	first := tool.Search(context.Background(), "Olahraga, Musik")
	for i := 0; i < 5; i++ {
		if got := tool.Search(context.Background(), "Olahraga, Musik"); got != first {
			t.Fatalf("search is not idempotent:\nfirst: %s\ngot:   %s", first, got)
		}
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	tool := NewSearchTool(&fakeRepo{clubs: testClubs()}, 10)
	records := decodeResult(t, tool.Search(context.Background(), "  FUTSAL  "))
	if len(records) != 1 {
		t.Fatalf("case-insensitive match failed: %v", records)
	}
}
