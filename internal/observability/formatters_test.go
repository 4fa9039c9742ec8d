package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/provision"
	"github.com/floworx/triage-agent/internal/types"
)

func TestPrintTaxonomy(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	tax := &types.Taxonomy{
		Industry: "hot_tub",
		Root: &types.CategoryNode{
			Name: "FloWorx",
			Children: []*types.CategoryNode{
				{Name: "Urgent", Color: "red"},
				{Name: "Suppliers", Color: "orange", Children: []*types.CategoryNode{
					{Name: "Aqua Spa Parts", Dynamic: true},
				}},
			},
		},
	}

	p.PrintTaxonomy(tax)
	output := buf.String()

	assert.Contains(t, output, "LABEL TAXONOMY")
	assert.Contains(t, output, "hot_tub")
	assert.Contains(t, output, "Urgent")
	assert.Contains(t, output, "Aqua Spa Parts")
}

func TestPrintTaxonomy_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTaxonomy(nil)

	assert.Empty(t, buf.String())
}

func TestPrintClassification(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	msg := &types.EmailMessage{
		From:    types.Address{Name: "Dana", Email: "dana@example.com"},
		Subject: "Heater not working",
	}
	cls := &types.ClassificationResult{
		Category:   "FloWorx/Support/Service Request",
		Confidence: 0.91,
		Urgency:    types.UrgencyNormal,
		Source:     types.SourceLLM,
	}

	p.PrintClassification(msg, cls)
	output := buf.String()

	assert.Contains(t, output, "CLASSIFICATION")
	assert.Contains(t, output, "dana@example.com")
	assert.Contains(t, output, "FloWorx/Support/Service Request")
	assert.Contains(t, output, "0.91")
}

func TestPrintRoutingDecision(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRoutingDecision(&types.RoutingDecision{
		AssigneeName:  "Hailey",
		AssigneeEmail: "hailey@hottubman.example",
		Reason:        types.RouteReasonUrgentOnCall,
	})
	output := buf.String()

	assert.Contains(t, output, "ROUTING")
	assert.Contains(t, output, "Hailey")
	assert.Contains(t, output, types.RouteReasonUrgentOnCall)
}

func TestPrintPlanTruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &provision.Plan{Creates: 15}
	for i := 0; i < 15; i++ {
		plan.Items = append(plan.Items, provision.PlannedLabel{
			Path:   "FloWorx/Suppliers/Vendor",
			Action: provision.ActionCreate,
		})
	}

	p.PrintPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "PROVISIONING PLAN")
	assert.Contains(t, output, "and 5 more labels")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&pipeline.RunResult{
		RunID:     uuid.New(),
		Processed: 12,
		Skipped:   3,
		ByCategory: map[string]int{
			"FloWorx/Sales/New Inquiry": 4,
			"FloWorx/Misc":              8,
		},
	})
	output := buf.String()

	assert.Contains(t, output, "TRIAGE RUN")
	assert.Contains(t, output, "FloWorx/Sales/New Inquiry")
	assert.Contains(t, output, "By category")
}
