// Package steps defines the triage pipeline step graph: which artifacts a
// run produces and what each step depends on.
package steps

import (
	"fmt"

	dbpkg "github.com/floworx/triage-agent/internal/db"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	dbpkg.StepFetchMessages: {
		Name:         dbpkg.StepFetchMessages,
		Category:     dbpkg.CategoryIngestion,
		Dependencies: []string{},
	},
	dbpkg.StepParseMessages: {
		Name:         dbpkg.StepParseMessages,
		Category:     dbpkg.CategoryIngestion,
		Dependencies: []string{dbpkg.StepFetchMessages},
	},
	dbpkg.StepClassify: {
		Name:         dbpkg.StepClassify,
		Category:     dbpkg.CategoryClassification,
		Dependencies: []string{dbpkg.StepParseMessages},
	},
	dbpkg.StepRoute: {
		Name:         dbpkg.StepRoute,
		Category:     dbpkg.CategoryRouting,
		Dependencies: []string{dbpkg.StepClassify},
	},
	dbpkg.StepApplyLabels: {
		Name:         dbpkg.StepApplyLabels,
		Category:     dbpkg.CategoryProvisioning,
		Dependencies: []string{dbpkg.StepClassify},
	},
	dbpkg.StepDraftReplies: {
		Name:         dbpkg.StepDraftReplies,
		Category:     dbpkg.CategoryDrafting,
		Dependencies: []string{dbpkg.StepClassify, dbpkg.StepRoute},
	},
	dbpkg.StepRunSummary: {
		Name:         dbpkg.StepRunSummary,
		Category:     dbpkg.CategoryClassification,
		Dependencies: []string{dbpkg.StepClassify, dbpkg.StepRoute},
	},
}

// GetStepDefinition returns a step definition by name
func GetStepDefinition(name string) (StepDefinition, error) {
	def, ok := StepRegistry[name]
	if !ok {
		return StepDefinition{}, fmt.Errorf("unknown step: %s", name)
	}
	return def, nil
}

// ValidateRegistry checks that every dependency refers to a defined step.
// Called from tests; a bad edge here means artifacts that can never exist.
func ValidateRegistry() error {
	for name, def := range StepRegistry {
		for _, dep := range def.Dependencies {
			if _, ok := StepRegistry[dep]; !ok {
				return fmt.Errorf("step %s depends on unknown step %s", name, dep)
			}
		}
	}
	return nil
}

// ExecutionOrder returns the steps in dependency order
func ExecutionOrder() ([]string, error) {
	if err := ValidateRegistry(); err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var order []string
	var visit func(name string) error

	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		visited[name] = true
		def := StepRegistry[name]
		for _, dep := range def.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, name)
		return nil
	}

	// Deterministic entry points keep the order stable across runs.
	for _, name := range []string{
		dbpkg.StepFetchMessages,
		dbpkg.StepParseMessages,
		dbpkg.StepClassify,
		dbpkg.StepRoute,
		dbpkg.StepApplyLabels,
		dbpkg.StepDraftReplies,
		dbpkg.StepRunSummary,
	} {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
