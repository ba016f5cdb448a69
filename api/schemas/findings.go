package schemas

// -- Finding Schemas --

// Severity represents the severity level of a synthetic audit finding.
// The values are capitalised because they are rendered verbatim in reports
// and in the JSON returned by the audit endpoint.
type Severity string

// Constants defining the severity levels an audit can produce.
const (
	SeverityCritical Severity = "Critical" // Highest rank.
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium" // Lowest rank.
)

// Status tracks where a finding is in its (one-way) lifecycle.
type Status string

const (
	// StatusIdentified is the status every finding starts with.
	StatusIdentified Status = "Identified"
	// StatusMitigated is set once a remediation suggestion has been
	// attached to the finding during report rendering.
	StatusMitigated Status = "Mitigated (Simulated)"
)

// Finding is one simulated vulnerability record. IDs are assigned in
// generation order starting at 1 and are not stable across audits.
type Finding struct {
	ID       int      `json:"id"`
	Module   string   `json:"module"`
	Method   string   `json:"method"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Status   Status   `json:"status"`
}

// Mitigated reports whether the finding has completed its lifecycle.
func (f Finding) Mitigated() bool {
	return f.Status == StatusMitigated
}
