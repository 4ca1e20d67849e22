package model

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Diff is the add/edit/delete triple produced by an editing surface.
// It is consumed once and discarded.
type Diff struct {
	Edited  map[int64]map[string]any `json:"edited"`
	Added   []map[string]any         `json:"added"`
	Deleted []int64                  `json:"deleted"`
}

// Empty reports whether the diff changes nothing.
func (d Diff) Empty() bool {
	return len(d.Edited) == 0 && len(d.Added) == 0 && len(d.Deleted) == 0
}

// EditedIDs returns the edited ids in ascending order.
func (d Diff) EditedIDs() []int64 {
	ids := make([]int64, 0, len(d.Edited))
	for id := range d.Edited {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DeletedIDs returns the deleted ids with duplicates removed.
func (d Diff) DeletedIDs() []int64 {
	seen := make(map[int64]struct{}, len(d.Deleted))
	ids := make([]int64, 0, len(d.Deleted))
	for _, id := range d.Deleted {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DecodeDiff reads a diff as JSON. Numbers are kept as json.Number so amounts stay exact.
func DecodeDiff(r io.Reader) (Diff, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var d Diff
	if err := dec.Decode(&d); err != nil {
		return Diff{}, fmt.Errorf("failed to decode diff: %w", err)
	}
	return d, nil
}
