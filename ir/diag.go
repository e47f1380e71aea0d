package ir

import "fmt"

// DiagKind is the closed, stringly-named set of diagnostic identifiers
// (§6). Kinds are stable across releases: tooling may match on the
// string form.
type DiagKind string

const (
	ErrExpectedMemref              DiagKind = "ir_expected_memref"
	ErrExpectedScalar              DiagKind = "ir_expected_scalar"
	ErrExpectedCoopMatrix          DiagKind = "ir_expected_coopmatrix"
	ErrExpectedCoopMatrixOrScalar  DiagKind = "ir_expected_coopmatrix_or_scalar"
	ErrExpectedMemrefOrGroup       DiagKind = "ir_expected_memref_or_group"
	ErrExpectedVectorOrMatrix      DiagKind = "ir_expected_vector_or_matrix"
	ErrInvalidNumberOfIndices      DiagKind = "ir_invalid_number_of_indices"
	ErrUnexpectedYield             DiagKind = "ir_unexpected_yield"
	ErrYieldMismatch               DiagKind = "ir_yield_mismatch"
	ErrBooleanUnsupported          DiagKind = "ir_boolean_unsupported"
	ErrFPUnsupported               DiagKind = "ir_fp_unsupported"
	ErrComplexUnsupported          DiagKind = "ir_complex_unsupported"
	ErrForbiddenCast               DiagKind = "ir_forbidden_cast"
	ErrForbiddenPromotion          DiagKind = "ir_forbidden_promotion"
	ErrUnsupportedSubgroupSize     DiagKind = "unsupported_subgroup_size"
	ErrSPIRVUndefinedValue         DiagKind = "spirv_undefined_value"
	ErrSPIRVMissingDopeVector      DiagKind = "spirv_missing_dope_vector"
	ErrSPIRVForbiddenForwardDecl   DiagKind = "spirv_forbidden_forward_declaration"
	ErrSPIRVUnsupportedAtomicType  DiagKind = "spirv_unsupported_atomic_data_type"
	ErrInternalCompilerError       DiagKind = "internal_compiler_error"
	ErrNotImplemented              DiagKind = "not_implemented"
	ErrFileIOError                 DiagKind = "file_io_error"
	ErrBadAlloc                    DiagKind = "bad_alloc"
)

// Diagnostic is a single verifier or lowering error, carrying the
// source location of the offending IR construct when one is known.
type Diagnostic struct {
	Kind    DiagKind
	Loc     Location
	Message string
}

func (d Diagnostic) Error() string {
	if d.Message == "" {
		return fmt.Sprintf("%s: %s", d.Loc, d.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Kind, d.Message)
}

// IsInternal reports whether d represents a compiler-invariant
// violation rather than a user error in the supplied IR (§6 "Internal
// errors").
func (d Diagnostic) IsInternal() bool {
	switch d.Kind {
	case ErrInternalCompilerError, ErrNotImplemented, ErrFileIOError, ErrBadAlloc:
		return true
	default:
		return false
	}
}

// DiagnosticList accumulates diagnostics across a verifier run, which
// collects every violation before returning rather than stopping at
// the first (§6 "the verifier ... is the sole exception: it collects
// every violation before returning").
type DiagnosticList struct {
	items []Diagnostic
}

// Add appends a diagnostic to the list.
func (dl *DiagnosticList) Add(kind DiagKind, loc Location, format string, args ...any) {
	dl.items = append(dl.items, Diagnostic{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// Items returns the accumulated diagnostics in report order.
func (dl *DiagnosticList) Items() []Diagnostic { return dl.items }

// Empty reports whether no diagnostics have been recorded.
func (dl *DiagnosticList) Empty() bool { return len(dl.items) == 0 }

// Err returns nil if dl is empty, otherwise a multiDiagError wrapping
// every recorded diagnostic.
func (dl *DiagnosticList) Err() error {
	if dl.Empty() {
		return nil
	}
	return multiDiagError(dl.items)
}

type multiDiagError []Diagnostic

func (m multiDiagError) Error() string {
	s := fmt.Sprintf("%d diagnostic(s):", len(m))
	for _, d := range m {
		s += "\n  " + d.Error()
	}
	return s
}

// Diagnostics unwraps the per-diagnostic slice from an error returned
// by DiagnosticList.Err, or returns nil if err wasn't one.
func Diagnostics(err error) []Diagnostic {
	if m, ok := err.(multiDiagError); ok {
		return m
	}
	return nil
}
