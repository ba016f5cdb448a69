// internal/reporting/sarif_reporter.go
package reporting

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
	"github.com/pitist/mi-orquestador-mvp/internal/audit"
	"github.com/pitist/mi-orquestador-mvp/internal/reporting/sarif"
)

// Tool identification in the SARIF report.
const (
	ToolName     = "Orchestrator Audit"
	ToolInfoURI  = "https://github.com/pitist/mi-orquestador-mvp"
	RuleIDPrefix = "ORCH-"
)

// ruleIDSanitizer matches runs of characters not allowed in a rule ID.
// Alphanumerics, underscore and dot survive; everything else collapses to one hyphen.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// SARIFReporter buffers audit results and writes one SARIF 2.1.0 log on Close.
// It is safe for concurrent use.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log

	// mu protects log and rulesByType.
	mu          sync.Mutex
	rulesByType map[string]string
}

// NewSARIFReporter creates a reporter that writes SARIF to writer. The
// reporter owns writer and closes it in Close.
func NewSARIFReporter(writer io.WriteCloser, toolVersion string, logger *zap.Logger) *SARIFReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := &sarif.Log{
		Version: sarif.Version,
		Schema:  sarif.Schema,
		Runs: []*sarif.Run{{
			Tool: &sarif.Tool{
				Driver: &sarif.ToolComponent{
					Name:           ToolName,
					Version:        pString(toolVersion),
					InformationURI: pString(ToolInfoURI),
					Rules:          []*sarif.ReportingDescriptor{},
				},
			},
			// Empty, not nil, so the JSON carries "results": [].
			Results: []*sarif.Result{},
		}},
	}

	return &SARIFReporter{
		writer:      writer,
		logger:      logger.Named("sarif_reporter"),
		log:         log,
		rulesByType: make(map[string]string),
	}
}

// Write adds one SARIF result per finding of res.
func (r *SARIFReporter) Write(res audit.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	run.Invocation = append(run.Invocation, sarif.Invocation{
		ExecutionSuccessful: true,
		StartTimeUTC:        res.GeneratedAt.UTC().Format(time.RFC3339),
		Properties:          sarif.PropertyBag{"audit_id": res.AuditID},
	})

	for _, f := range res.Findings {
		location := f.Module + "::" + f.Method
		run.Results = append(run.Results, &sarif.Result{
			RuleID:  r.ensureRule(f.Type),
			Message: &sarif.Message{Text: pString(fmt.Sprintf("%s in %s", f.Type, location))},
			Level:   mapSeverityToSARIFLevel(f.Severity),
			Locations: []*sarif.Location{{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: pString(f.Module)},
				},
				LogicalLocations: []sarif.LogicalLocation{{
					Name:               f.Method,
					FullyQualifiedName: location,
					Kind:               "function",
				}},
			}},
			Properties: sarif.PropertyBag{
				"audit_id":   res.AuditID,
				"finding_id": f.ID,
				"severity":   string(f.Severity),
				"status":     string(f.Status),
			},
		})
	}

	if len(res.Findings) > 0 {
		r.logger.Debug("Wrote findings to SARIF buffer",
			zap.String("audit_id", res.AuditID),
			zap.Int("findings_count", len(res.Findings)),
		)
	}
	return nil
}

// Close encodes the log to the writer and closes it.
func (r *SARIFReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	r.logger.Info("Finalizing SARIF report",
		zap.Int("total_results", len(run.Results)),
		zap.Int("total_rules", len(run.Tool.Driver.Rules)),
	)

	data, encodeErr := json.MarshalIndent(r.log, "", "  ")
	if encodeErr == nil {
		data = append(data, '\n')
		_, encodeErr = r.writer.Write(data)
	}
	// Always close the writer, even after a failed encode.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

// ensureRule returns the rule ID for a vulnerability type, registering the
// rule on first use. The caller must hold r.mu.
func (r *SARIFReporter) ensureRule(vulnType string) string {
	if id, ok := r.rulesByType[vulnType]; ok {
		return id
	}

	id := RuleIDPrefix + sanitizeRuleName(vulnType)
	suggestion := audit.Suggest(vulnType)
	markdown := fmt.Sprintf("**Vulnerability:** %s\n\n**Suggested transformation:**\n%s", vulnType, suggestion)

	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, &sarif.ReportingDescriptor{
		ID:               id,
		Name:             pString(vulnType),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(vulnType)},
		Help: &sarif.MultiformatMessageString{
			Text:     pString(suggestion),
			Markdown: pString(markdown),
		},
		Properties: sarif.PropertyBag{
			"tags": []string{"security", "simulated"},
		},
	})
	r.rulesByType[vulnType] = id
	r.logger.Debug("Registered SARIF rule", zap.String("rule_id", id))
	return id
}

// sanitizeRuleName upper-cases name and replaces disallowed characters.
func sanitizeRuleName(name string) string {
	sanitized := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(name), "-"), "-")
	if sanitized == "" {
		return "UNNAMED-VULNERABILITY"
	}
	return sanitized
}

// mapSeverityToSARIFLevel converts a finding severity to a SARIF level.
func mapSeverityToSARIFLevel(severity schemas.Severity) sarif.Level {
	switch severity {
	case schemas.SeverityCritical, schemas.SeverityHigh:
		return sarif.LevelError
	case schemas.SeverityMedium:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

func pString(s string) *string {
	return &s
}
