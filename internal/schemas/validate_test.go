package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ClassificationResult(t *testing.T) {
	valid := []byte(`{
		"category": "FloWorx/Support/Service Request",
		"confidence": 0.87,
		"urgency": "normal",
		"is_supplier": false,
		"reasoning": "customer requesting a repair visit"
	}`)
	require.NoError(t, Validate(ClassificationResultSchema, valid))
}

func TestValidate_ClassificationResult_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing category", `{"confidence": 0.5, "urgency": "low", "is_supplier": false}`},
		{"confidence above one", `{"category": "x", "confidence": 1.5, "urgency": "low", "is_supplier": false}`},
		{"bad urgency enum", `{"category": "x", "confidence": 0.5, "urgency": "asap", "is_supplier": false}`},
		{"extra property", `{"category": "x", "confidence": 0.5, "urgency": "low", "is_supplier": false, "color": "red"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ClassificationResultSchema, []byte(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidate_WorkflowDocument(t *testing.T) {
	valid := []byte(`{
		"name": "FloWorx Triage - The Hot Tub Man",
		"nodes": [
			{"id": "n1", "name": "Gmail Trigger", "type": "n8n-nodes-base.gmailTrigger", "parameters": {}}
		],
		"connections": {},
		"settings": {"executionOrder": "v1"}
	}`)
	require.NoError(t, Validate(WorkflowDocumentSchema, valid))

	noNodes := []byte(`{"name": "x", "nodes": [], "connections": {}, "settings": {}}`)
	assert.Error(t, Validate(WorkflowDocumentSchema, noNodes))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope.schema.json", []byte(`{}`))
	assert.Error(t, err)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "confidence", Message: "out of range"}}}
	assert.Contains(t, ve.Error(), "confidence")
	assert.Contains(t, ve.Error(), "out of range")
}
