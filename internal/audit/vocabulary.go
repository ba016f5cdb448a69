package audit

import (
	"github.com/pitist/mi-orquestador-mvp/api/schemas"
)

// fallbackMethod is used when a module has no method list of its own.
const fallbackMethod = "general_method"

// GenericSuggestion is returned for finding types outside the known mapping.
const GenericSuggestion = "General strategy: Forensic analysis and application of security patches. Architecture review."

// modules is the fixed set of synthetic module names an audit can blame.
var modules = []string{
	"auth_service.py",
	"data_handler.py",
	"payment_processor.py",
}

// methodsByModule lists the methods that can be reported for each module.
var methodsByModule = map[string][]string{
	"auth_service.py":      {"login", "register", "change_password"},
	"data_handler.py":      {"get_user_data", "save_record", "delete_file"},
	"payment_processor.py": {"process_transaction", "refund", "check_status"},
}

// severities holds the draw order used by the weighted severity choice,
// with severityWeights aligned index for index.
var (
	severities      = []schemas.Severity{schemas.SeverityCritical, schemas.SeverityHigh, schemas.SeverityMedium}
	severityWeights = []float64{0.4, 0.4, 0.2}
)

// typesBySeverity is the vocabulary each severity draws its finding type from.
var typesBySeverity = map[schemas.Severity][]string{
	schemas.SeverityCritical: {
		"Remote Code Injection",
		"Critical Credential Exposure",
		"Total Authorization Bypass",
		"Blind SQL Injection",
	},
	schemas.SeverityHigh: {
		"Sensitive Information Leakage",
		"Logical Denial of Service (DoS)",
		"Cross-Site Scripting (XSS)",
	},
	schemas.SeverityMedium: {
		"User Enumeration",
		"Weak Password Brute Force",
		"Incorrect Security Configuration",
	},
}

var suggestions = map[string]string{
	"Remote Code Injection":            "Implement sandboxing, strict input validation, and avoid dynamic code execution with external data.",
	"Critical Credential Exposure":     "Use managed secrets (e.g., HashiCorp Vault if cloud), secure environment variables. Never hardcode credentials.",
	"Total Authorization Bypass":       "Review and strengthen RBAC (Role-Based Access Control) logic. Apply the principle of least privilege.",
	"Blind SQL Injection":              "Refactor to ORM (Object-Relational Mapper) or use prepared statements with bound parameters.",
	"Sensitive Information Leakage":    "Implement encryption in transit and at rest, data anonymization, and DLP (Data Loss Prevention).",
	"Logical Denial of Service (DoS)":  "Optimize algorithms, implement rate limiting, timeouts, and load balancing.",
	"Cross-Site Scripting (XSS)":       "Sanitize all user inputs before rendering them in HTML. Use Content Security Policy (CSP).",
	"User Enumeration":                 "Implement generic error messages for login/registration that do not reveal user existence.",
	"Weak Password Brute Force":        "Implement login attempt limits, temporary account locking, and reCAPTCHA. Enforce strong passwords.",
	"Incorrect Security Configuration": "Perform regular configuration audits, use secure configuration templates (e.g., CIS Benchmarks).",
}

// Rank returns the numeric weight used for prioritization (higher = more severe).
// Unknown severities rank below every known one.
func Rank(s schemas.Severity) int {
	switch s {
	case schemas.SeverityCritical:
		return 3
	case schemas.SeverityHigh:
		return 2
	case schemas.SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Suggest returns the remediation suggestion for a finding type. It never
// returns an empty string.
func Suggest(vulnType string) string {
	if s, ok := suggestions[vulnType]; ok {
		return s
	}
	return GenericSuggestion
}

// TypesFor returns a copy of the type vocabulary for a severity, or nil for
// an unknown severity.
func TypesFor(s schemas.Severity) []string {
	types, ok := typesBySeverity[s]
	if !ok {
		return nil
	}
	return append([]string(nil), types...)
}

// Modules returns a copy of the synthetic module list.
func Modules() []string {
	return append([]string(nil), modules...)
}

// MethodsFor returns the methods that may be reported for a module.
func MethodsFor(module string) []string {
	methods, ok := methodsByModule[module]
	if !ok || len(methods) == 0 {
		return []string{fallbackMethod}
	}
	return append([]string(nil), methods...)
}
