package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
)

// TestFindingJSONTags pins the field names of the audit endpoint's response.
func TestFindingJSONTags(t *testing.T) {
	t.Parallel()
	expected := map[string]string{
		"ID":       "id",
		"Module":   "module",
		"Method":   "method",
		"Type":     "type",
		"Severity": "severity",
		"Status":   "status",
	}

	typ := reflect.TypeOf(schemas.Finding{})
	assert.Equal(t, len(expected), typ.NumField(), "Finding gained or lost a field")
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		want, ok := expected[field.Name]
		if assert.True(t, ok, "unexpected field %s", field.Name) {
			assert.Equal(t, want, field.Tag.Get("json"), "json tag of %s", field.Name)
		}
	}
}

func TestFinding_Mitigated(t *testing.T) {
	t.Parallel()
	f := schemas.Finding{Status: schemas.StatusIdentified}
	assert.False(t, f.Mitigated())

	f.Status = schemas.StatusMitigated
	assert.True(t, f.Mitigated())
}

func TestSeverityAndStatusValues(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Critical", string(schemas.SeverityCritical))
	assert.Equal(t, "High", string(schemas.SeverityHigh))
	assert.Equal(t, "Medium", string(schemas.SeverityMedium))
	assert.Equal(t, "Identified", string(schemas.StatusIdentified))
	assert.Equal(t, "Mitigated (Simulated)", string(schemas.StatusMitigated))
}
