package mapper

// Span describes a location in a YAML source file.
type Span struct {
	Line   int // 1-based
	Column int // 1-based
	Length int // characters covered on Line
	Reason string
}

// ErrorMeta describes a schema violation to be located.
type ErrorMeta struct {
	Kind     string // "additionalProperties", "required", "type", ...
	Property string // offending or missing property name, when known
}
