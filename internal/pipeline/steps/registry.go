// Package steps provides step definitions and dependency validation for the lead
// prioritization pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step names
const (
	IngestProduct    = "ingest_product"
	ExtractICP       = "extract_icp"
	ImportNetwork    = "import_network"
	IngestCandidates = "ingest_candidates"
	MatchNetwork     = "match_network"
	RankLeads        = "rank_leads"
	ComposeMessages  = "compose_messages"
)

// Step categories
const (
	CategoryIngestion = "ingestion"
	CategoryTargeting = "targeting"
	CategoryNetwork   = "network"
	CategoryOutreach  = "outreach"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
	// Order is the position of the step in a full sequential run.
	Order int
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	IngestProduct: {
		Name:         IngestProduct,
		Category:     CategoryIngestion,
		Dependencies: []string{},
		Optional:     []string{},
		Order:        1,
	},
	ExtractICP: {
		Name:         ExtractICP,
		Category:     CategoryTargeting,
		Dependencies: []string{IngestProduct},
		Optional:     []string{},
		Order:        2,
	},
	ImportNetwork: {
		Name:         ImportNetwork,
		Category:     CategoryNetwork,
		Dependencies: []string{},
		Optional:     []string{},
		Order:        3,
	},
	IngestCandidates: {
		Name:         IngestCandidates,
		Category:     CategoryIngestion,
		Dependencies: []string{},
		Optional:     []string{},
		Order:        4,
	},
	MatchNetwork: {
		Name:         MatchNetwork,
		Category:     CategoryNetwork,
		Dependencies: []string{ImportNetwork, IngestCandidates},
		Optional:     []string{},
		Order:        5,
	},
	RankLeads: {
		Name:         RankLeads,
		Category:     CategoryNetwork,
		Dependencies: []string{MatchNetwork},
		Optional:     []string{},
		Order:        6,
	},
	ComposeMessages: {
		Name:         ComposeMessages,
		Category:     CategoryOutreach,
		Dependencies: []string{RankLeads},
		Optional:     []string{IngestProduct},
		Order:        7,
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}

	return nil
}

// Plan returns the steps needed to reach target, in execution order. Optional dependencies
// are not pulled in.
func Plan(target string) ([]string, error) {
	if _, ok := StepRegistry[target]; !ok {
		return nil, fmt.Errorf("unknown step: %s", target)
	}

	needed := map[string]bool{}
	var visit func(name string)
	visit = func(name string) {
		if needed[name] {
			return
		}
		needed[name] = true
		for _, dep := range StepRegistry[name].Dependencies {
			visit(dep)
		}
	}
	visit(target)

	plan := make([]string, 0, len(needed))
	for name := range needed {
		plan = append(plan, name)
	}
	sort.Slice(plan, func(i, j int) bool {
		return StepRegistry[plan[i]].Order < StepRegistry[plan[j]].Order
	})
	return plan, nil
}

// GetAvailableSteps returns steps that can be executed (dependencies met, not yet completed)
func GetAvailableSteps(completed map[string]bool) []string {
	var available []string
	for stepName := range StepRegistry {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(completed, stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Slice(available, func(i, j int) bool {
		return StepRegistry[available[i]].Order < StepRegistry[available[j]].Order
	})
	return available
}
