package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"campus-dispatch/internal/policy/repository"
	reportdomain "campus-dispatch/internal/report/domain"
)

// Default Rego policy that matches the built-in routing table.
const defaultRegoPolicy = `package campus.triage

default team = "security"
default priority = "medium"

team = "facilities" if {
	input.category == "facility"
}

team = "facilities" if {
	input.category == "maintenance"
}

team = "medical" if {
	input.category == "medical"
}

priority = "high" if {
	input.category == "safety"
}

priority = "high" if {
	input.category == "medical"
}

priority = "low" if {
	input.category == "maintenance"
}
`

var allCategories = []reportdomain.Category{
	reportdomain.CategorySecurity,
	reportdomain.CategorySafety,
	reportdomain.CategoryHarassment,
	reportdomain.CategoryFacility,
	reportdomain.CategoryMaintenance,
	reportdomain.CategoryMedical,
}

// OPAEvaluator resolves the category routing table by evaluating OPA Rego
// policies. Stored policies override the built-in default; an evaluation
// failure falls back to the built-in table so triage never stops routing.
type OPAEvaluator struct {
	policyRepo repository.Repository
}

// NewOPAEvaluator returns an OPA-based routing policy evaluator.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the default policy. Does not call the policy repo or database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	modules := map[string]string{"policy_0.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	q := rego.New(
		rego.Query("data.campus.triage.team"),
		rego.Compiler(compiler),
		rego.Input(map[string]interface{}{"category": "security"}),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// ResolveRoutingTable evaluates the routing policy for every category.
func (e *OPAEvaluator) ResolveRoutingTable(ctx context.Context) (reportdomain.RoutingTable, error) {
	var policies []string
	if e.policyRepo != nil {
		stored, err := e.policyRepo.GetEnabledPolicies(ctx)
		if err != nil {
			log.Printf("policy: failed to load routing policies: %v", err)
		} else {
			for _, p := range stored {
				if p.Enabled && p.Rules != "" {
					policies = append(policies, p.Rules)
				}
			}
		}
	}
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}

	table, err := e.evaluatePolicies(ctx, policies)
	if err != nil {
		log.Printf("policy: evaluation failed: %v, using built-in routing", err)
		return reportdomain.DefaultRoutingTable(), nil
	}
	if !table.Complete() {
		log.Printf("policy: resolved table incomplete, using built-in routing")
		return reportdomain.DefaultRoutingTable(), nil
	}
	return table, nil
}

func (e *OPAEvaluator) evaluatePolicies(ctx context.Context, policies []string) (reportdomain.RoutingTable, error) {
	modules := make(map[string]string)
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}

	fallback := reportdomain.DefaultRoutingTable()
	table := make(reportdomain.RoutingTable, len(allCategories))
	for _, category := range allCategories {
		input := map[string]interface{}{"category": string(category)}
		route := fallback[category]

		if v, err := e.queryString(ctx, compiler, "data.campus.triage.team", input); err == nil && v != "" {
			route.Team = reportdomain.Team(v)
		}
		if v, err := e.queryString(ctx, compiler, "data.campus.triage.priority", input); err == nil {
			if p := reportdomain.Priority(v); p.Valid() {
				route.Priority = p
			}
		}
		table[category] = route
	}
	return table, nil
}

func (e *OPAEvaluator) queryString(ctx context.Context, compiler *ast.Compiler, query string, input map[string]interface{}) (string, error) {
	q := rego.New(
		rego.Query(query),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return "", err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return "", fmt.Errorf("query %s returned no result", query)
	}
	v, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("query %s returned non-string", query)
	}
	return v, nil
}

var _ Evaluator = (*OPAEvaluator)(nil)
