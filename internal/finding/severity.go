// Package finding defines the wire model for EdgeCheck engine findings
// and the normalization applied at the trust boundary.
package finding

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the severity level of a finding.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

const (
	// SeverityWarning indicates a likely problem that needs review.
	// It is the zero value: a finding with no severity is a warning.
	SeverityWarning Severity = iota
	// SeverityError indicates a reproducible crash.
	SeverityError
	// SeverityInfo indicates intentionally guarded input handling.
	SeverityInfo
	// SeverityHint indicates a low-priority observation.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Pointer receiver required by json.Unmarshaler interface.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string into a Severity value.
// Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "hint":
		return SeverityHint, nil
	default:
		return SeverityWarning, fmt.Errorf("unknown severity: %q", s)
	}
}

// rank orders severities from most to least severe. Unknown values
// rank as warnings, matching the parse fallback.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	case SeverityHint:
		return 3
	default:
		return 1
	}
}

// IsAtLeast returns true if s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s.rank() <= threshold.rank()
}
