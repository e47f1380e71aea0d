package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticListAccumulatesInReportOrder(t *testing.T) {
	var dl DiagnosticList
	assert.True(t, dl.Empty())

	dl.Add(ErrExpectedScalar, Location{File: "a.go", StartLine: 1}, "got %s", "memref")
	dl.Add(ErrYieldMismatch, Location{File: "a.go", StartLine: 2}, "want %d, got %d", 1, 0)

	require.False(t, dl.Empty())
	require.Len(t, dl.Items(), 2)
	assert.Equal(t, ErrExpectedScalar, dl.Items()[0].Kind)
	assert.Equal(t, ErrYieldMismatch, dl.Items()[1].Kind)
	assert.Equal(t, "got memref", dl.Items()[0].Message)
}

func TestDiagnosticListErrRoundTripsThroughDiagnostics(t *testing.T) {
	var dl DiagnosticList
	dl.Add(ErrSPIRVUndefinedValue, Location{}, "value %q", "stray")
	dl.Add(ErrForbiddenCast, Location{}, "")

	err := dl.Err()
	require.Error(t, err)

	diags := Diagnostics(err)
	require.Len(t, diags, 2)
	assert.Equal(t, ErrSPIRVUndefinedValue, diags[0].Kind)
	assert.Equal(t, ErrForbiddenCast, diags[1].Kind)
}

func TestDiagnosticListErrIsNilWhenEmpty(t *testing.T) {
	var dl DiagnosticList
	assert.Nil(t, dl.Err())
}

func TestDiagnosticIsInternalClassifiesCompilerInvariantViolations(t *testing.T) {
	cases := []struct {
		kind     DiagKind
		internal bool
	}{
		{ErrInternalCompilerError, true},
		{ErrNotImplemented, true},
		{ErrFileIOError, true},
		{ErrBadAlloc, true},
		{ErrExpectedScalar, false},
		{ErrYieldMismatch, false},
	}
	for _, c := range cases {
		d := Diagnostic{Kind: c.kind}
		assert.Equalf(t, c.internal, d.IsInternal(), "IsInternal(%s)", c.kind)
	}
}

func TestDiagnosticErrorFormatsLocationKindAndMessage(t *testing.T) {
	d := Diagnostic{Kind: ErrExpectedMemref, Loc: Location{File: "k.go", StartLine: 3}, Message: "got scalar"}
	assert.Contains(t, d.Error(), string(ErrExpectedMemref))
	assert.Contains(t, d.Error(), "got scalar")
}
