package engine

import (
	"context"

	reportdomain "campus-dispatch/internal/report/domain"
)

// Evaluator resolves the category routing table from policy, using OPA or
// other engines.
type Evaluator interface {
	// ResolveRoutingTable evaluates the routing policy for every category and
	// returns the complete table. Loaded once at start-up; the table is never
	// mutated at runtime.
	ResolveRoutingTable(ctx context.Context) (reportdomain.RoutingTable, error)
}
