package reader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grekov/survfit/internal/model"
)

// TableAdapter parses whitespace-delimited tables (R-style .dat/.txt
// exports): one observation per line, columns time event [group], blank
// lines and #-comments skipped. Header rows are detected the same way as
// for CSV. This is the catch-all adapter.
type TableAdapter struct{}

// NewTableAdapter creates a new whitespace-table adapter
func NewTableAdapter() *TableAdapter {
	return &TableAdapter{}
}

// Name returns the adapter name
func (a *TableAdapter) Name() string { return "table" }

// CanHandle accepts anything; the table adapter is registered last
func (a *TableAdapter) CanHandle(source string) bool { return true }

// Parse reads whitespace-delimited lines into observations
func (a *TableAdapter) Parse(r io.Reader) ([]model.Observation, error) {
	scanner := bufio.NewScanner(r)

	var records []model.Observation
	lineNo := 0
	timeCol, eventCol, groupCol := 0, 1, -1
	headerSeen := false

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if !headerSeen {
			headerSeen = true
			var start int
			timeCol, eventCol, groupCol, start = detectColumns(fields)
			if start == 1 {
				// Header line, nothing to parse
				continue
			}
		}

		obs, err := parseRow(fields, timeCol, eventCol, groupCol)
		if err != nil {
			return nil, fmt.Errorf("table line %d: %w", lineNo, err)
		}
		records = append(records, obs)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan table: %w", err)
	}

	return records, nil
}
