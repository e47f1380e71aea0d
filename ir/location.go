package ir

import "fmt"

// Location is a source-location span for diagnostics (§3 "carries a
// source-location for diagnostics"). The core never produces these
// itself — they are attached by whatever external builder/parser
// constructs the Program — but every error-reporting path threads
// them through.
type Location struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// String renders "file:line:col" or "file:line:col-line:col" for
// multi-position spans, the format diagnostics embed.
func (l Location) String() string {
	if l.File == "" && l.StartLine == 0 {
		return "<unknown>"
	}
	if l.StartLine == l.EndLine && l.StartColumn == l.EndColumn {
		return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartColumn)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartColumn, l.EndLine, l.EndColumn)
}
