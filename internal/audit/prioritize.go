package audit

import (
	"sort"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
)

// Prioritize sorts findings in place by severity rank, most severe first.
// The sort is stable: findings of equal severity keep their generation order.
func Prioritize(findings []schemas.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return Rank(findings[i].Severity) > Rank(findings[j].Severity)
	})
}
