package model

import (
	"fmt"
	"math"
	"sort"
)

// Observation is a single time-to-event record
type Observation struct {
	Time     float64 `json:"time"`     // Event time, or censoring threshold when Censored
	Censored bool    `json:"censored"` // True: the event is known only to occur after Time
	Group    int     `json:"group"`    // Normalized group index (0-based)
}

// Dataset is an immutable collection of observations partitioned into groups.
// Group indices are contiguous (0..Groups-1); original labels are kept for
// reporting. Safe for unsynchronized concurrent reads once constructed.
type Dataset struct {
	observations []Observation
	groups       [][]int // group index -> observation indices
	labels       []int   // group index -> original label
}

// NewDataset builds a Dataset from raw records, validating every observation
// and normalizing group labels to contiguous indices
func NewDataset(records []Observation) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: no observations")
	}

	// Collect and sort distinct group labels
	seen := make(map[int]bool)
	for i, r := range records {
		if r.Time < 0 {
			return nil, fmt.Errorf("dataset: observation %d has negative time %g", i, r.Time)
		}
		if math.IsNaN(r.Time) || math.IsInf(r.Time, 0) {
			return nil, fmt.Errorf("dataset: observation %d has non-finite time", i)
		}
		if r.Group < 0 {
			return nil, fmt.Errorf("dataset: observation %d has negative group %d", i, r.Group)
		}
		seen[r.Group] = true
	}

	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	index := make(map[int]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	ds := &Dataset{
		observations: make([]Observation, len(records)),
		groups:       make([][]int, len(labels)),
		labels:       labels,
	}
	for i, r := range records {
		g := index[r.Group]
		ds.observations[i] = Observation{Time: r.Time, Censored: r.Censored, Group: g}
		ds.groups[g] = append(ds.groups[g], i)
	}

	return ds, nil
}

// Len returns the total observation count
func (d *Dataset) Len() int {
	return len(d.observations)
}

// Groups returns the number of groups
func (d *Dataset) Groups() int {
	return len(d.groups)
}

// Label returns the original label for a normalized group index
func (d *Dataset) Label(group int) int {
	return d.labels[group]
}

// Observation returns the i-th observation
func (d *Dataset) Observation(i int) Observation {
	return d.observations[i]
}

// GroupIndices returns the observation indices belonging to a group.
// The returned slice must not be modified.
func (d *Dataset) GroupIndices(group int) []int {
	return d.groups[group]
}

// CensoredCount returns how many observations are right-censored
func (d *Dataset) CensoredCount() int {
	n := 0
	for _, o := range d.observations {
		if o.Censored {
			n++
		}
	}
	return n
}

// EventCount returns the number of uncensored events in a group
func (d *Dataset) EventCount(group int) int {
	n := 0
	for _, i := range d.groups[group] {
		if !d.observations[i].Censored {
			n++
		}
	}
	return n
}

// Exposure returns the total person-time at risk in a group: observed event
// times plus censoring thresholds
func (d *Dataset) Exposure(group int) float64 {
	sum := 0.0
	for _, i := range d.groups[group] {
		sum += d.observations[i].Time
	}
	return sum
}

// MaxTime returns the largest time value in the dataset (event or threshold)
func (d *Dataset) MaxTime() float64 {
	max := 0.0
	for _, o := range d.observations {
		if o.Time > max {
			max = o.Time
		}
	}
	return max
}
