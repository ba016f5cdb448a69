// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
	"github.com/pitist/mi-orquestador-mvp/internal/audit"
	"github.com/pitist/mi-orquestador-mvp/internal/reporting"
)

const testToolVersion = "v1.0.0-test"

func sampleResult() audit.Result {
	return audit.Result{
		AuditID:     "3f1c2a",
		GeneratedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Findings: []schemas.Finding{
			{ID: 2, Module: "auth_service.py", Method: "login", Type: "Blind SQL Injection", Severity: schemas.SeverityCritical, Status: schemas.StatusMitigated},
			{ID: 1, Module: "payment_processor.py", Method: "refund", Type: "User Enumeration", Severity: schemas.SeverityMedium, Status: schemas.StatusMitigated},
		},
		Report: "\n--- Security Audit Report (2025-03-04T05:06:07Z) ---\n--- End of Audit ---\n",
	}
}

func TestNew_Stdout(t *testing.T) {
	for _, path := range []string{"", "-", "stdout"} {
		var out bytes.Buffer
		r, err := reporting.New("text", path, &out, testToolVersion, zaptest.NewLogger(t))
		require.NoError(t, err)

		require.NoError(t, r.Write(sampleResult()))
		require.NoError(t, r.Close())
		assert.Equal(t, sampleResult().Report, out.String(), "path %q", path)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	var stdout bytes.Buffer

	r, err := reporting.New("JSON", path, &stdout, testToolVersion, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "output file should be created by New")

	require.NoError(t, r.Write(sampleResult()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"audit_id": "3f1c2a"`)
	assert.Empty(t, stdout.String())
}

func TestNew_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.out")

	r, err := reporting.New("xml", path, new(bytes.Buffer), testToolVersion, nil)

	require.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be created for a bad format")
}

func TestNew_FileCreationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.sarif")

	_, err := reporting.New("sarif", path, new(bytes.Buffer), testToolVersion, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestTextReporter_AddsTrailingNewline(t *testing.T) {
	var out bytes.Buffer
	r, err := reporting.New("text", "", &out, testToolVersion, nil)
	require.NoError(t, err)

	require.NoError(t, r.Write(audit.Result{Report: audit.NoFindingsReport}))
	require.NoError(t, r.Write(sampleResult()))
	require.NoError(t, r.Close())

	assert.Equal(t, audit.NoFindingsReport+"\n"+sampleResult().Report, out.String())
}

func TestJSONReporter(t *testing.T) {
	var out bytes.Buffer
	r, err := reporting.New("json", "", &out, testToolVersion, nil)
	require.NoError(t, err)

	require.NoError(t, r.Write(sampleResult()))
	require.NoError(t, r.Close())

	var doc reporting.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	want := sampleResult()
	assert.Equal(t, want.AuditID, doc.AuditID)
	assert.True(t, want.GeneratedAt.Equal(doc.GeneratedAt))
	assert.Equal(t, want.Findings, doc.Vulnerabilities)
	assert.Equal(t, want.Report, doc.Report)
}

func TestJSONReporter_EmptyFindingsIsArray(t *testing.T) {
	var out bytes.Buffer
	r, err := reporting.New("json", "", &out, testToolVersion, nil)
	require.NoError(t, err)

	require.NoError(t, r.Write(audit.Result{AuditID: "empty", Report: audit.NoFindingsReport}))

	assert.Contains(t, out.String(), `"vulnerabilities": []`)
	assert.True(t, strings.HasSuffix(out.String(), "}\n"))
}
