package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetColumns is the column order of a quote exported as a spreadsheet.
var SheetColumns = []string{"SKU", "Part Description", "Brand", "Category", "Qty", "Nett Price Each"}

// ReadQuoteSheet reads the first sheet of an xlsx quote export. The first row
// is a header; rows without a SKU are skipped.
func ReadQuoteSheet(r io.Reader) (*Quote, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open quote sheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read quote sheet: %w", err)
	}

	quote := &Quote{Parts: []QuotePart{}}
	if len(rows) < 2 {
		return quote, nil
	}

	for i, row := range rows[1:] {
		line := i + 2
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		part := QuotePart{SKU: strings.TrimSpace(row[0])}
		part.PartDescription = cell(row, 1)
		part.Brand = cell(row, 2)
		part.Category = cell(row, 3)

		if v := cell(row, 4); v != "" {
			qty, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: qty %q: %w", line, v, err)
			}
			part.Qty = qty
		}
		if v := cell(row, 5); v != "" {
			price, err := decimal.NewFromString(strings.TrimPrefix(v, "$"))
			if err != nil {
				return nil, fmt.Errorf("row %d: price %q: %w", line, v, err)
			}
			part.NettPriceEach = price
		}

		quote.Parts = append(quote.Parts, part)
	}
	return quote, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
