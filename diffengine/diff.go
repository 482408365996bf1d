package diffengine

import (
	"sort"
)

// FieldDiff is one disagreement between the draft and canonical readings
// of a contract. A field present on only one side diffs against the
// empty rendering of Absent.
type FieldDiff struct {
	FieldPath      string
	DraftValue     string
	CanonicalValue string
}

// Compute returns one FieldDiff per field path where draft and canonical
// disagree, in deterministic path order. Pure and idempotent: the same
// pair of payloads always yields the same set.
func Compute(draft, canonical Payload) []FieldDiff {
	paths := make(map[string]struct{}, len(draft)+len(canonical))
	for p := range draft {
		paths[p] = struct{}{}
	}
	for p := range canonical {
		paths[p] = struct{}{}
	}

	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	var diffs []FieldDiff
	for _, path := range ordered {
		dv, ok := draft[path]
		if !ok {
			dv = Absent
		}
		cv, ok := canonical[path]
		if !ok {
			cv = Absent
		}
		if dv.Equal(cv) {
			continue
		}
		diffs = append(diffs, FieldDiff{
			FieldPath:      path,
			DraftValue:     dv.Render(),
			CanonicalValue: cv.Render(),
		})
	}
	return diffs
}
