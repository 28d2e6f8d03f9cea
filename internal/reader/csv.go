package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grekov/survfit/internal/model"
)

// CSVAdapter parses comma-separated datasets.
//
// Expected columns: time, event, group. Matched by header name when a header row
// is present, positionally otherwise (group optional). The event column
// follows the usual survival convention: 1/true means the event was
// observed, 0/false means the observation is right-censored at its time
// value. The censoring flag is inverted here, exactly once, at the parse
// boundary.
type CSVAdapter struct{}

// NewCSVAdapter creates a new CSV adapter
func NewCSVAdapter() *CSVAdapter {
	return &CSVAdapter{}
}

// Name returns the adapter name
func (a *CSVAdapter) Name() string { return "csv" }

// CanHandle claims .csv sources
func (a *CSVAdapter) CanHandle(source string) bool {
	return strings.HasSuffix(source, ".csv")
}

// Parse reads all CSV records into observations
func (a *CSVAdapter) Parse(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: no rows")
	}

	timeCol, eventCol, groupCol, start := detectColumns(rows[0])

	var records []model.Observation
	for i := start; i < len(rows); i++ {
		row := rows[i]
		obs, err := parseRow(row, timeCol, eventCol, groupCol)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		records = append(records, obs)
	}

	return records, nil
}

// detectColumns maps column indices from a header row when one is present,
// otherwise assumes positional time,event[,group]
func detectColumns(first []string) (timeCol, eventCol, groupCol, start int) {
	timeCol, eventCol, groupCol = 0, 1, -1
	if len(first) > 2 {
		groupCol = 2
	}

	header := false
	for i, cell := range first {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "time", "t", "duration":
			timeCol = i
			header = true
		case "event", "status", "observed":
			eventCol = i
			header = true
		case "group", "treatment", "arm":
			groupCol = i
			header = true
		}
	}
	if header {
		start = 1
	}
	return timeCol, eventCol, groupCol, start
}

// parseRow converts one record, inverting the event flag into Censored
func parseRow(row []string, timeCol, eventCol, groupCol int) (model.Observation, error) {
	if timeCol >= len(row) || eventCol >= len(row) {
		return model.Observation{}, fmt.Errorf("expected at least %d columns, got %d", eventCol+1, len(row))
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(row[timeCol]), 64)
	if err != nil {
		return model.Observation{}, fmt.Errorf("bad time %q: %w", row[timeCol], err)
	}

	event, err := parseBool(row[eventCol])
	if err != nil {
		return model.Observation{}, fmt.Errorf("bad event flag %q: %w", row[eventCol], err)
	}

	group := 0
	if groupCol >= 0 && groupCol < len(row) && strings.TrimSpace(row[groupCol]) != "" {
		group, err = strconv.Atoi(strings.TrimSpace(row[groupCol]))
		if err != nil {
			return model.Observation{}, fmt.Errorf("bad group %q: %w", row[groupCol], err)
		}
	}

	return model.Observation{Time: t, Censored: !event, Group: group}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "event":
		return true, nil
	case "0", "false", "no", "censored":
		return false, nil
	default:
		return false, fmt.Errorf("not a recognized flag")
	}
}
