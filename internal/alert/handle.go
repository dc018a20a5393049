package alert

import "strings"

// handleSeparator joins trigger identifiers into one persisted string. Only
// this file touches the delimiter.
const handleSeparator = ","

// Handle is the composite of trigger identifiers a single logical alert
// required (on-time plus optional advance). A reminder persists one handle per
// back-end namespace as an opaque string.
type Handle []string

// ParseHandle splits a persisted handle string into its identifiers. Blank
// fragments are dropped so cancellation stays order-independent and tolerant
// of hand-edited rows.
func ParseHandle(s string) Handle {
	if s == "" {
		return nil
	}

	var h Handle
	for _, part := range strings.Split(s, handleSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			h = append(h, part)
		}
	}

	return h
}

// Encode returns the persistable form of the handle, empty when no triggers
// were registered.
func (h Handle) Encode() string {
	return strings.Join(h, handleSeparator)
}

// Empty reports whether the handle carries no trigger identifiers.
func (h Handle) Empty() bool {
	return len(h) == 0
}
