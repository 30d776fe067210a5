package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OverrideKind enumerates the three states of a subject override.
type OverrideKind int

const (
	// OverrideInherit keeps the fixed slot's subject. It is the zero value.
	OverrideInherit OverrideKind = iota
	// OverrideNone means "explicitly no subject today".
	OverrideNone
	// OverrideSpecific replaces the subject with SubjectID.
	OverrideSpecific
)

func (k OverrideKind) String() string {
	switch k {
	case OverrideInherit:
		return "inherit"
	case OverrideNone:
		return "none"
	case OverrideSpecific:
		return "specific"
	default:
		return fmt.Sprintf("OverrideKind(%d)", int(k))
	}
}

// SubjectOverride is the tagged variant Inherit | None | Specific(id).
//
// On the wire it keeps the document-store encoding: the field is omitted for
// Inherit (use the `omitzero` tag option), null for None and the id string for Specific.
type SubjectOverride struct {
	Kind      OverrideKind
	SubjectID string
}

// InheritSubject returns the override that keeps the template subject.
func InheritSubject() SubjectOverride { return SubjectOverride{Kind: OverrideInherit} }

// NoSubject returns the override that empties the subject.
func NoSubject() SubjectOverride { return SubjectOverride{Kind: OverrideNone} }

// SpecificSubject returns the override that sets the subject to id.
func SpecificSubject(id string) SubjectOverride {
	return SubjectOverride{Kind: OverrideSpecific, SubjectID: id}
}

// IsZero reports Inherit; encoding/json uses it for `omitzero`.
func (o SubjectOverride) IsZero() bool {
	return o.Kind == OverrideInherit
}

// Apply resolves the override against the template subject.
func (o SubjectOverride) Apply(template *string) *string {
	switch o.Kind {
	case OverrideNone:
		return nil
	case OverrideSpecific:
		id := o.SubjectID
		return &id
	default:
		return template
	}
}

func (o SubjectOverride) String() string {
	if o.Kind == OverrideSpecific {
		return "specific(" + o.SubjectID + ")"
	}
	return o.Kind.String()
}

func (o SubjectOverride) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OverrideSpecific:
		return json.Marshal(o.SubjectID)
	case OverrideNone:
		return []byte("null"), nil
	default:
		// Only reached when the field is encoded without omitzero.
		return []byte("null"), nil
	}
}

// UnmarshalJSON maps null to None and a string to Specific. A missing field
// never reaches here and stays Inherit.
func (o *SubjectOverride) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = NoSubject()
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("subjectIdOverride must be null or a string: %w", err)
	}
	*o = SpecificSubject(id)
	return nil
}
