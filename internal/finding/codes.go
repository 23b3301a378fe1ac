package finding

// Code describes one finding category reported by the engine.
type Code struct {
	// ID is the short identifier (e.g. "EC001").
	ID string

	// Title is a human-readable summary of the category.
	Title string

	// DefaultSeverity applies when the engine omits a severity.
	DefaultSeverity Severity

	// Hint suggests how to address findings of this category.
	Hint string
}

// Well-known code identifiers.
const (
	CodeDivisionByZero  = "EC001"
	CodeIndexOutOfRange = "EC002"
	CodeValueError      = "EC090"
	CodeGuardedZero     = "EC101"
	CodeGuardedBuffer   = "EC102"
	CodeUnknown         = "EC999"
)

// codes is the registry of categories the engine is known to emit.
// Mirrors the engine's code table so reporters can attach titles and hints
// even when the engine omits them.
var codes = map[string]Code{
	CodeDivisionByZero: {
		ID:              CodeDivisionByZero,
		Title:           "Possible division by zero",
		DefaultSeverity: SeverityError,
		Hint:            "Check denominator or early-return.",
	},
	CodeIndexOutOfRange: {
		ID:              CodeIndexOutOfRange,
		Title:           "Index may be out of range",
		DefaultSeverity: SeverityError,
		Hint:            "Validate buffer length/index.",
	},
	CodeValueError: {
		ID:              CodeValueError,
		Title:           "ValueError",
		DefaultSeverity: SeverityWarning,
		Hint:            "Review arguments and add guards.",
	},
	CodeGuardedZero: {
		ID:              CodeGuardedZero,
		Title:           "Guarded invalid input (zero denominator)",
		DefaultSeverity: SeverityInfo,
		Hint:            "This ValueError is an intentional guard. Consider documenting or returning a Result type.",
	},
	CodeGuardedBuffer: {
		ID:              CodeGuardedBuffer,
		Title:           "Guarded invalid input (buffer size)",
		DefaultSeverity: SeverityInfo,
		Hint:            "This ValueError is an intentional guard. Consider documenting or validating earlier.",
	},
	CodeUnknown: {
		ID:              CodeUnknown,
		Title:           "Unclassified crash",
		DefaultSeverity: SeverityWarning,
		Hint:            "Review function arguments and add guards.",
	},
}

// LookupCode returns the registry entry for a code ID.
// Unknown IDs return the EC999 entry with the requested ID preserved.
func LookupCode(id string) Code {
	if c, ok := codes[id]; ok {
		return c
	}
	c := codes[CodeUnknown]
	if id != "" {
		c.ID = id
	}
	return c
}

// KnownCodes returns all registered code IDs in unspecified order.
func KnownCodes() []string {
	out := make([]string, 0, len(codes))
	for id := range codes {
		out = append(out, id)
	}
	return out
}
