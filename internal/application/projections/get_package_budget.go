package projections

import (
	"context"

	"eventdesk/internal/domain/budget"
	"eventdesk/internal/domain/catalog"
)

// GetPackageBudgetQuery carries input for the package budget projection.
type GetPackageBudgetQuery struct {
	Token     string
	PackageID string
}

// GetPackageBudgetDeps holds dependencies for the package budget projection.
type GetPackageBudgetDeps struct {
	API PackageAPI
}

// InclusionLine is one row of the inclusion table.
type InclusionLine struct {
	Name   string
	Amount string
}

// PackageBudgetResult is a package with its computed breakdown.
type PackageBudgetResult struct {
	Package    catalog.Package
	Breakdown  budget.Breakdown
	Inclusions []InclusionLine
	Price      string
	Total      string
	Magnitude  string
	Chart      string // CSS conic-gradient
}

// QueryGetPackageBudget loads a package and computes its budget.
// PRE: query.PackageID is non-empty
// POST: Breakdown.Difference == price - sum(inclusion costs) in cents
func QueryGetPackageBudget(ctx context.Context, query GetPackageBudgetQuery, deps GetPackageBudgetDeps) (PackageBudgetResult, error) {
	p, err := deps.API.GetPackageByID(ctx, query.Token, query.PackageID)
	if err != nil {
		return PackageBudgetResult{}, err
	}
	b := p.Budget()
	lines := make([]InclusionLine, 0, len(p.Inclusions))
	for _, inc := range p.Inclusions {
		lines = append(lines, InclusionLine{Name: inc.Name, Amount: budget.FormatCents(budget.ToCents(inc.Cost))})
	}
	return PackageBudgetResult{
		Package:    p,
		Breakdown:  b,
		Inclusions: lines,
		Price:      budget.FormatCents(b.Price),
		Total:      budget.FormatCents(b.Total),
		Magnitude:  budget.FormatCents(b.Magnitude),
		Chart:      b.ConicGradient(),
	}, nil
}
