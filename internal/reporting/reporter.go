// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
	"github.com/pitist/mi-orquestador-mvp/internal/audit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Supported output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Reporter writes audit results to an output.
type Reporter interface {
	// Write processes a single audit result.
	Write(res audit.Result) error
	// Close finalizes the report and releases the output.
	Close() error
}

// Document is the JSON form of one audit.
type Document struct {
	AuditID         string            `json:"audit_id"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Vulnerabilities []schemas.Finding `json:"vulnerabilities"`
	Report          string            `json:"report"`
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format. An empty outputPath, "-" or "stdout"
// writes to stdout, which is never closed; any other path is created or truncated.
func New(format, outputPath string, stdout io.Writer, toolVersion string, logger *zap.Logger) (Reporter, error) {
	format = strings.ToLower(format)
	switch format {
	case FormatText, FormatJSON, FormatSARIF:
	default:
		return nil, fmt.Errorf("unsupported output format %q (want text, json or sarif)", format)
	}

	var writer io.WriteCloser = nopWriteCloser{stdout}
	if outputPath != "" && outputPath != "-" && outputPath != "stdout" {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case FormatJSON:
		return &jsonReporter{w: writer}, nil
	case FormatSARIF:
		return NewSARIFReporter(writer, toolVersion, logger), nil
	default:
		return &textReporter{w: writer}, nil
	}
}

// textReporter prints the rendered report of each audit.
type textReporter struct {
	w io.WriteCloser
}

func (r *textReporter) Write(res audit.Result) error {
	report := res.Report
	if !strings.HasSuffix(report, "\n") {
		report += "\n"
	}
	if _, err := io.WriteString(r.w, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *textReporter) Close() error {
	return r.w.Close()
}

// jsonReporter prints one indented Document per audit.
type jsonReporter struct {
	w io.WriteCloser
}

func (r *jsonReporter) Write(res audit.Result) error {
	doc := Document{
		AuditID:         res.AuditID,
		GeneratedAt:     res.GeneratedAt,
		Vulnerabilities: res.Findings,
		Report:          res.Report,
	}
	if doc.Vulnerabilities == nil {
		doc.Vulnerabilities = []schemas.Finding{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit: %w", err)
	}
	if _, err := r.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit: %w", err)
	}
	return nil
}

func (r *jsonReporter) Close() error {
	return r.w.Close()
}
