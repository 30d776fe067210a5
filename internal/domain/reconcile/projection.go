package reconcile

import (
	"encoding/json"
	"fmt"
)

// DefaultIgnoredFields are the volatile fields stripped when no list is given.
var DefaultIgnoredFields = []string{"updatedAt", "createdAt", "aiSummaryLastGeneratedAt"}

// fieldDefaults fill optional fields that legacy documents leave out.
var fieldDefaults = map[string]any{
	"subjectIdOverride": nil,
	"showOnCalendar":    false,
	"isManuallyCleared": false,
	"text":              "",
}

// Projection is the comparison-only view of one entity.
type Projection struct {
	// Key orders entities inside a collection: "id:<id>", "date:<date>_<period>",
	// "day:<day>_<period>" or, with none of those, "value:<canonical>".
	Key string
	// Value is the entity as a JSON value with ignored fields removed and defaults filled.
	Value any
	// canonical is the key-sorted JSON encoding of Value.
	canonical string
}

// Project builds the comparison view of item. The error is the only failure path of the
// package; CollectionEqual turns it into a reference-equality fallback.
func Project(item any, ignoredFields []string) (Projection, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return Projection{}, fmt.Errorf("project %T: %w", item, err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return Projection{}, fmt.Errorf("project %T: %w", item, err)
	}

	if obj, ok := value.(map[string]any); ok {
		for _, f := range ignoredFields {
			delete(obj, f)
		}
		for f, def := range fieldDefaults {
			if _, present := obj[f]; !present {
				obj[f] = def
			}
		}
	}

	// encoding/json writes map keys sorted, so this is canonical.
	canon, err := json.Marshal(value)
	if err != nil {
		return Projection{}, fmt.Errorf("canonicalize %T: %w", item, err)
	}
	p := Projection{Value: value, canonical: string(canon)}
	p.Key = sortKey(value, p.canonical)
	return p, nil
}

func sortKey(value any, canonical string) string {
	obj, ok := value.(map[string]any)
	if !ok {
		return "value:" + canonical
	}
	if id, ok := obj["id"]; ok && id != nil && id != "" {
		return fmt.Sprintf("id:%v", id)
	}
	period, hasPeriod := obj["period"]
	if hasPeriod {
		if date, ok := obj["date"]; ok && date != nil {
			return fmt.Sprintf("date:%v_%v", date, period)
		}
		if day, ok := obj["day"]; ok && day != nil {
			return fmt.Sprintf("day:%v_%v", day, period)
		}
	}
	return "value:" + canonical
}

// Normalize returns the comparison view of every item: ignored fields stripped and
// defaults filled. An empty ignoredFields means DefaultIgnoredFields.
func Normalize[T any](items []T, ignoredFields ...string) ([]any, error) {
	ignored := ignoredOrDefault(ignoredFields)
	out := make([]any, 0, len(items))
	for _, item := range items {
		p, err := Project(item, ignored)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Value)
	}
	return out, nil
}

func ignoredOrDefault(fields []string) []string {
	if len(fields) == 0 {
		return DefaultIgnoredFields
	}
	return fields
}
