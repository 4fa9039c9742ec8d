// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/provision"
	"github.com/floworx/triage-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTaxonomy outputs the generated label tree with colors and dynamic
// branch markers.
func (p *Printer) PrintTaxonomy(tax *types.Taxonomy) {
	if tax == nil || tax.Root == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Industry: %s\n\n", tax.Industry))

	tax.Walk(func(path string, node *types.CategoryNode) {
		depth := strings.Count(path, types.PathSeparator)
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(node.Name)
		if node.Color != "" {
			sb.WriteString(fmt.Sprintf("  [%s]", node.Color))
		}
		if node.Dynamic {
			sb.WriteString("  *")
		}
		sb.WriteString("\n")
	})

	p.printBox("LABEL TAXONOMY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClassification outputs one message's classification outcome.
func (p *Printer) PrintClassification(msg *types.EmailMessage, cls *types.ClassificationResult) {
	if cls == nil {
		return
	}

	var sb strings.Builder
	if msg != nil {
		sb.WriteString(fmt.Sprintf("From:     %s\n", msg.From.String()))
		subject := msg.Subject
		if len(subject) > 45 {
			subject = subject[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Subject:  %s\n\n", subject))
	}

	sb.WriteString(fmt.Sprintf("Category:   %s\n", cls.Category))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f (%s)\n", cls.Confidence, cls.Source))
	sb.WriteString(fmt.Sprintf("Urgency:    %s\n", cls.Urgency))
	if cls.IsSupplier {
		sb.WriteString("Supplier:   yes\n")
	}
	if cls.MatchedEntity != "" {
		sb.WriteString(fmt.Sprintf("Matched:    %s\n", cls.MatchedEntity))
	}
	if cls.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("Reasoning:  %s\n", cls.Reasoning))
	}

	p.printBox("CLASSIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoutingDecision outputs who a message was assigned to and why.
func (p *Printer) PrintRoutingDecision(route *types.RoutingDecision) {
	if route == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Assignee: %s <%s>\n", route.AssigneeName, route.AssigneeEmail))
	sb.WriteString(fmt.Sprintf("Reason:   %s\n", route.Reason))
	if route.MatchedOn != "" {
		sb.WriteString(fmt.Sprintf("Matched:  %s\n", route.MatchedOn))
	}

	p.printBox("ROUTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan outputs a provisioning diff before it is applied.
func (p *Printer) PrintPlan(plan *provision.Plan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d creates, %d adopts, %d recolors\n\n",
		plan.Creates, plan.Adopts, plan.Recolors))

	count := min(len(plan.Items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := plan.Items[i]
		sb.WriteString(fmt.Sprintf("%-8s %s\n", item.Action, item.Path))
	}
	if len(plan.Items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more labels\n", len(plan.Items)-maxItemsToShow))
	}

	p.printBox("PROVISIONING PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintApplyResult outputs what a provisioning pass actually did.
func (p *Printer) PrintApplyResult(result *provision.ApplyResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Created:   %d\n", result.Created))
	sb.WriteString(fmt.Sprintf("Adopted:   %d\n", result.Adopted))
	sb.WriteString(fmt.Sprintf("Recolored: %d\n", result.Recolored))
	sb.WriteString(fmt.Sprintf("Pruned:    %d\n", result.Pruned))

	p.printBox("PROVISIONING RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRepairReport outputs the result of a label ID verification pass.
func (p *Printer) PrintRepairReport(report *provision.RepairReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checked: %d, healthy: %d\n", report.Checked, report.Healthy))

	if len(report.Repaired) > 0 {
		sb.WriteString("\nRepaired IDs:\n")
		for _, path := range report.Repaired {
			sb.WriteString(fmt.Sprintf("  • %s\n", path))
		}
	}
	if len(report.Missing) > 0 {
		sb.WriteString("\nMissing remotely (re-run provisioning):\n")
		for _, path := range report.Missing {
			sb.WriteString(fmt.Sprintf("  • %s\n", path))
		}
	}

	p.printBox("LABEL VERIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the result of one triage run.
func (p *Printer) PrintRunSummary(result *pipeline.RunResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Processed: %d\n", result.Processed))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", result.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", result.Failed))
	sb.WriteString(fmt.Sprintf("Drafted:   %d\n", result.Drafted))

	if len(result.ByCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		categories := make([]string, 0, len(result.ByCategory))
		for category := range result.ByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			sb.WriteString(fmt.Sprintf("  %3d  %s\n", result.ByCategory[category], category))
		}
	}

	p.printBox("TRIAGE RUN", strings.TrimSuffix(sb.String(), "\n"))
}
