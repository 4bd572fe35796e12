package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"strawbeary/internal/domain"
)

type stubMenuRepo struct {
	items []domain.MenuItem
	err   error
}

func (s *stubMenuRepo) Upsert(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, item)
	return &item, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,price,imageURL,isAvailable,category
Strawbeary Jam,Homemade jam,5.99,https://example.com/jam.jpg,true,Spreads
Strawbeary Latte,,7.49,,,
,,,,,
Strawbeary Retired,Gone,1.00,,false,Drinks`

	repo := &stubMenuRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 dishes imported, got %d", count)
	}
	if len(repo.items) != 3 {
		t.Fatalf("expected 3 dishes saved, got %d", len(repo.items))
	}

	jam := repo.items[0]
	if jam.Name != "Strawbeary Jam" || jam.Price.String() != "5.99" || jam.Category != "Spreads" || !jam.IsAvailable || jam.ImageURL != "https://example.com/jam.jpg" {
		t.Fatalf("unexpected dish data: %+v", jam)
	}

	latte := repo.items[1]
	if latte.Category != domain.DefaultMenuCategory || !latte.IsAvailable {
		t.Fatalf("expected defaults on latte, got %+v", latte)
	}

	if repo.items[2].IsAvailable {
		t.Fatalf("expected retired dish to be unavailable")
	}
}

func TestCSVImporter_RunRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing price column": "name,description\nJam,x",
		"bad price":            "name,price\nJam,abc",
		"negative price":       "name,price\nJam,-1",
		"missing name":         "name,price\n,5.00",
		"bad availability":     "name,price,isAvailable\nJam,5.00,maybe",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubMenuRepo{}
			if _, err := NewCSVImporter(strings.NewReader(data), repo).Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
			if len(repo.items) != 0 {
				t.Fatalf("expected nothing saved, got %d", len(repo.items))
			}
		})
	}
}

func TestCSVImporter_RunStopsOnStoreError(t *testing.T) {
	repo := &stubMenuRepo{err: errors.New("db down")}
	count, err := NewCSVImporter(strings.NewReader("name,price\nJam,5.99\n"), repo).Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if count != 0 {
		t.Fatalf("expected 0 imported, got %d", count)
	}
}

func TestCSVImporter_EmptyInput(t *testing.T) {
	if _, err := NewCSVImporter(strings.NewReader(""), &stubMenuRepo{}).Run(context.Background()); err == nil {
		t.Fatalf("expected header read error")
	}
}
