package catalog

import "eventdesk/internal/domain/budget"

// Inclusion is a costed item bundled into a package.
type Inclusion struct {
	Name string  `json:"inclusion_name"`
	Cost float64 `json:"cost"`
}

// Package is an event package offered to clients.
type Package struct {
	ID          string      `json:"package_id"`
	Name        string      `json:"package_name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Capacity    int         `json:"capacity"`
	Inclusions  []Inclusion `json:"inclusions"`
}

// Budget computes the package's budget breakdown.
// INVARIANT: Package is not mutated
func (p Package) Budget() budget.Breakdown {
	incs := make([]budget.Inclusion, 0, len(p.Inclusions))
	for _, inc := range p.Inclusions {
		incs = append(incs, budget.Inclusion{Name: inc.Name, Cost: budget.ToCents(inc.Cost)})
	}
	return budget.Compute(budget.ToCents(p.Price), incs)
}
