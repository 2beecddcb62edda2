package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInfer  Phase = "infer"  // schema recording
	PhaseDecode Phase = "decode" // bytes to dynamic value
	PhaseEncode Phase = "encode" // dynamic value to bytes
	PhaseSchema Phase = "schema" // schema authoring and conversion
	PhaseMemory Phase = "memory" // guest linear memory access
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedShape  Kind = "unsupported_shape"
	KindSchemaNotProvided Kind = "schema_not_provided"
	KindSchemaMismatch    Kind = "schema_mismatch"
	KindProtocol          Kind = "protocol"

	KindOutOfBounds   Kind = "out_of_bounds"
	KindInvalidData   Kind = "invalid_data"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindOverflow      Kind = "overflow"
	KindTrailingBytes Kind = "trailing_bytes"
	KindUnsupported   Kind = "unsupported"
	KindNilPointer    Kind = "nil_pointer"
)

// Sentinels for errors.Is. A target without a Phase matches any phase.
var (
	ErrUnsupportedShape  = &Error{Kind: KindUnsupportedShape}
	ErrSchemaNotProvided = &Error{Kind: KindSchemaNotProvided}
	ErrSchemaMismatch    = &Error{Kind: KindSchemaMismatch}
	ErrProtocol          = &Error{Kind: KindProtocol}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Schema string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Schema != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Schema != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", schema ")
			b.WriteString(e.Schema)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("schema ")
			b.WriteString(e.Schema)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Schema != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kinds must be equal; phases must be equal unless the target leaves Phase empty.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if e.Kind != t.Kind {
			return false
		}
		return t.Phase == "" || e.Phase == t.Phase
	}
	return false
}

// IsCore reports whether the kind belongs to the engine's own taxonomy,
// as opposed to a failure surfaced by a wire collaborator.
func (k Kind) IsCore() bool {
	switch k {
	case KindUnsupportedShape, KindSchemaNotProvided, KindSchemaMismatch, KindProtocol:
		return true
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the node path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Schema sets the rendered schema of the offending node
func (b *Builder) Schema(s string) *Builder {
	b.err.Schema = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the engine taxonomy

// UnsupportedShape reports a shape the engine does not model
// (sequences, maps, optionals, raw bytes, payload-carrying variants).
func UnsupportedShape(phase Phase, path []string, shape string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedShape,
		Path:   path,
		Detail: shape + " is not a supported shape",
	}
}

// SchemaNotProvided reports a nested decode or encode that fired without
// an expected schema node. It indicates a driver defect, not bad input.
func SchemaNotProvided(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSchemaNotProvided,
		Path:   path,
		Detail: "no expected schema for nested call",
	}
}

// SchemaMismatch reports disagreement between a schema and the data it guides.
func SchemaMismatch(phase Phase, path []string, schema string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindSchemaMismatch,
		Path:   path,
		Schema: schema,
		Detail: detail,
	}
}

// Protocol wraps an error surfaced by a wire collaborator.
func Protocol(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindProtocol,
		Path:  path,
		Cause: cause,
	}
}

// Convenience constructors for wire collaborators

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Unsupported reports a Go type the wire driver cannot map onto the protocol.
func Unsupported(phase Phase, path []string, goType, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		GoType: goType,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error for a read or write of n bytes at offset.
func OutOfBounds(phase Phase, offset, n, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("%d bytes at offset %d out of bounds (length %d)", n, offset, length),
		Value:  offset,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("length %v exceeds limit %d", value, limit),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// TrailingBytes reports unread input left after a complete value.
func TrailingBytes(consumed uint64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTrailingBytes,
		Detail: fmt.Sprintf("unexpected bytes after offset %d", consumed),
		Value:  consumed,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns err with path prepended when err is an *Error without a path.
// Other errors are returned unchanged.
func WithPath(err error, path []string) error {
	e, ok := err.(*Error)
	if !ok || len(e.Path) > 0 || len(path) == 0 {
		return err
	}
	cp := *e
	cp.Path = append([]string(nil), path...)
	return &cp
}
