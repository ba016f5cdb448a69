package audit

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
)

// NoFindingsReport is the whole report when an audit finds nothing.
const NoFindingsReport = "No new critical vulnerabilities detected in this audit."

// RenderReport writes the human-readable report for already prioritized
// findings. Each finding gets its remediation suggestion attached and its
// status moved to StatusMitigated once its block has been written, so the
// block itself still shows the status the finding was identified with.
func RenderReport(generatedAt time.Time, findings []schemas.Finding, logger *zap.Logger) string {
	if len(findings) == 0 {
		return NoFindingsReport
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n--- Security Audit Report (%s) ---\n", generatedAt.Format(time.RFC3339))
	b.WriteString("Identified and prioritized vulnerabilities:\n\n")

	for i := range findings {
		f := &findings[i]
		// Priority is the position in the sorted list; it is only logged.
		logger.Info("Prioritized vulnerability",
			zap.Int("priority", i+1),
			zap.String("type", f.Type),
			zap.String("location", f.Module+"::"+f.Method),
			zap.String("severity", string(f.Severity)),
		)

		fmt.Fprintf(&b, "  - ID: %d\n", f.ID)
		fmt.Fprintf(&b, "    Module: %s:: Method: %s\n", f.Module, f.Method)
		fmt.Fprintf(&b, "    Type: %s\n", f.Type)
		fmt.Fprintf(&b, "    Severity: %s\n", f.Severity)
		fmt.Fprintf(&b, "    Status: %s\n", f.Status)

		suggestion := Suggest(f.Type)
		logger.Debug("Transforming into strength", zap.Int("id", f.ID), zap.String("suggestion", suggestion))
		fmt.Fprintf(&b, "    Transformation Suggestion: %s\n\n", suggestion)

		f.Status = schemas.StatusMitigated
	}

	b.WriteString("--- End of Audit ---\n")
	return b.String()
}
