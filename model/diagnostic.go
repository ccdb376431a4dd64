package model

import (
	"fmt"
	"strings"
)

// Diagnostic is one non-fatal record of a field that failed cleaning or a
// row that violated a cross-field invariant.
type Diagnostic struct {
	Source  string `json:"source" csv:"source"`
	Row     int    `json:"row" csv:"row"` // 1-based, header-adjusted
	Field   string `json:"field" csv:"field"`
	Raw     string `json:"raw" csv:"raw"`
	Message string `json:"message" csv:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s %q: %s", d.Source, d.Row, d.Field, d.Raw, d.Message)
}

// FormatDiagnostics renders diagnostics one per line.
func FormatDiagnostics(diags []Diagnostic) string {
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
