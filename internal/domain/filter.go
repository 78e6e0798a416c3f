package domain

import "strings"

// FilterType enumerates the supported passthrough filter kinds.
type FilterType string

const (
	FilterTypeFreeText FilterType = "free_text"
)

// Filter is a passthrough filter spec attached to a source or sink. The
// internal name is the machine-readable handle derived from the display
// name when not given explicitly.
type Filter struct {
	Name         string     `json:"name"`
	Type         FilterType `json:"type"`
	Required     bool       `json:"required"`
	InternalName string     `json:"internal_name,omitempty"`
}

// normalize derives the internal name from the display name: lowercased,
// runs of whitespace collapsed to single underscores.
func (f *Filter) normalize() {
	if f.InternalName != "" {
		return
	}
	f.InternalName = strings.Join(strings.Fields(strings.ToLower(f.Name)), "_")
}
