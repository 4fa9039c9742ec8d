package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowConfigHash_Stable(t *testing.T) {
	a := &WorkflowConfig{
		BusinessName: "The Hot Tub Man",
		Industry:     "hot_tub_spa",
		Mailbox:      "info@thehottubman.com",
		Provider:     "gmail",
		LabelIDs: map[string]string{
			"FloWorx/Urgent": "Label_101",
			"FloWorx/Sales":  "Label_102",
		},
	}
	b := &WorkflowConfig{
		BusinessName: "The Hot Tub Man",
		Industry:     "hot_tub_spa",
		Mailbox:      "info@thehottubman.com",
		Provider:     "gmail",
		// Same entries, different insertion order.
		LabelIDs: map[string]string{
			"FloWorx/Sales":  "Label_102",
			"FloWorx/Urgent": "Label_101",
		},
	}

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestWorkflowConfigHash_ChangesWithContent(t *testing.T) {
	base := &WorkflowConfig{
		BusinessName: "The Hot Tub Man",
		Provider:     "gmail",
		LabelIDs:     map[string]string{"FloWorx/Urgent": "Label_101"},
	}
	h1 := base.Hash()

	base.LabelIDs["FloWorx/Urgent"] = "Label_999"
	assert.NotEqual(t, h1, base.Hash())
}
