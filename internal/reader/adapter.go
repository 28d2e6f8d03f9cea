// Package reader loads tabular time-to-event datasets from local files or
// http(s) URLs. Concrete formats are handled by adapters; the loader picks
// the first adapter that recognizes the source name.
package reader

import (
	"io"
	"strings"

	"github.com/grekov/survfit/internal/model"
)

// Adapter parses one tabular format into raw observations
type Adapter interface {
	// Name returns the adapter name for diagnostics
	Name() string

	// CanHandle reports whether this adapter should parse the named source
	CanHandle(source string) bool

	// Parse reads the whole source and returns its observations
	Parse(r io.Reader) ([]model.Observation, error)
}

// adapters in priority order; the table adapter is the catch-all
func defaultAdapters() []Adapter {
	return []Adapter{
		NewCSVAdapter(),
		NewTableAdapter(),
	}
}

// selectAdapter returns the first adapter claiming the source
func selectAdapter(adapters []Adapter, source string) Adapter {
	name := strings.ToLower(source)
	for _, a := range adapters {
		if a.CanHandle(name) {
			return a
		}
	}
	return nil
}
