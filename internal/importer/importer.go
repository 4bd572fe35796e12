package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
)

type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

// CSVImporter reads a menu CSV (name,description,price,imageURL,isAvailable,category)
// and upserts every row by dish name.
type CSVImporter struct {
	reader *csv.Reader
	menu   MenuWriter
}

func NewCSVImporter(r io.Reader, menu MenuWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, menu: menu}
}

// Run upserts rows in file order and returns how many were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"name", "price"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing %q column", col)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		item, skip, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if skip {
			continue
		}
		if _, err := i.menu.Upsert(ctx, item); err != nil {
			return imported, fmt.Errorf("upsert %q: %w", item.Name, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// parseRow maps a record onto a menu item. Blank rows are skipped.
func parseRow(record []string, index map[string]int) (domain.MenuItem, bool, error) {
	name := pick(record, index, "name")
	priceStr := pick(record, index, "price")
	if name == "" && priceStr == "" {
		return domain.MenuItem{}, true, nil
	}
	if name == "" {
		return domain.MenuItem{}, false, errors.New("name is required")
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.MenuItem{}, false, fmt.Errorf("invalid price %q for %q", priceStr, name)
	}
	if price.IsNegative() {
		return domain.MenuItem{}, false, fmt.Errorf("negative price for %q", name)
	}

	available := true
	if raw := pick(record, index, "isAvailable"); raw != "" {
		available, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.MenuItem{}, false, fmt.Errorf("invalid isAvailable %q for %q", raw, name)
		}
	}

	category := pick(record, index, "category")
	if category == "" {
		category = domain.DefaultMenuCategory
	}

	return domain.MenuItem{
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price,
		ImageURL:    pick(record, index, "imageURL"),
		IsAvailable: available,
		Category:    category,
	}, false, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
