package reconcile

import (
	"cmp"
	"slices"
)

// CollectionEqual reports whether two collections hold the same entities regardless of
// order, ignored fields and omitted defaults. A nil slice is "absent": two nil slices are
// equal, one nil slice is not. An empty ignoredFields means DefaultIgnoredFields.
//
// The element types may differ, e.g. typed entities against raw store documents.
func CollectionEqual[A, B any](a []A, b []B, ignoredFields ...string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}

	ignored := ignoredOrDefault(ignoredFields)
	pa, errA := projectAll(a, ignored)
	pb, errB := projectAll(b, ignored)
	if errA != nil || errB != nil {
		return referenceEqual(a, b)
	}

	for i := range pa {
		if pa[i].Key != pb[i].Key || pa[i].canonical != pb[i].canonical {
			return false
		}
	}
	return true
}

// GroupedCollectionEqual compares date-keyed groups: same key set and CollectionEqual
// for every key.
func GroupedCollectionEqual[A, B any](a map[string][]A, b map[string][]B, ignoredFields ...string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for key, groupA := range a {
		groupB, ok := b[key]
		if !ok {
			return false
		}
		if !CollectionEqual(groupA, groupB, ignoredFields...) {
			return false
		}
	}
	return true
}

func projectAll[T any](items []T, ignored []string) ([]Projection, error) {
	out := make([]Projection, 0, len(items))
	for _, item := range items {
		p, err := Project(item, ignored)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	// Ties on Key (duplicates, or entities without id) fall back to the full value so the
	// order never depends on the input order.
	slices.SortFunc(out, func(x, y Projection) int {
		if c := cmp.Compare(x.Key, y.Key); c != 0 {
			return c
		}
		return cmp.Compare(x.canonical, y.canonical)
	})
	return out, nil
}

// referenceEqual only holds for the very same backing array.
func referenceEqual[A, B any](a []A, b []B) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return any(&a[0]) == any(&b[0])
}
