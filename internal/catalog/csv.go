package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ukm-labs/advisor/internal/domain"
)

// ImportCSV loads clubs from a spreadsheet CSV export and replaces the
// catalog contents with them. The first row must be a header; columns are
// matched by name so the spreadsheet column order does not matter. Unknown
// columns are ignored, missing ones are left empty.
func ImportCSV(ctx context.Context, repo Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read catalog csv: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("catalog csv %s has no data rows", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["nama_ukm"]; !ok {
		return 0, fmt.Errorf("catalog csv %s is missing the nama_ukm column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	clubs := make([]domain.Club, 0, len(records)-1)
	for _, row := range records[1:] {
		c := domain.Club{
			Name:       field(row, "nama_ukm"),
			Category:   field(row, "kategori"),
			Activity:   field(row, "jenis_kegiatan"),
			Schedule:   field(row, "jadwal_latihan"),
			Desc:       field(row, "deskripsi"),
			CoreValues: field(row, "nilai_utama"),
		}
		if c.Name == "" {
			continue
		}
		clubs = append(clubs, c)
	}

	if err := repo.ReplaceAll(ctx, clubs); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(clubs), nil
}
