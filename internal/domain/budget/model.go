package budget

import (
	"fmt"
	"math"
	"strings"
)

// Status describes how a package price compares to its inclusion costs.
type Status int

const (
	StatusExact Status = iota
	StatusBuffer
	StatusOverage
)

// String returns the status label shown to users.
func (s Status) String() string {
	switch s {
	case StatusBuffer:
		return "buffer"
	case StatusOverage:
		return "overage"
	}
	return "exact"
}

// Inclusion is one costed item of a package. Amounts are in cents.
type Inclusion struct {
	Name string
	Cost int64
}

// Slice is one segment of the budget pie chart.
type Slice struct {
	Label   string
	Amount  int64
	Percent float64
	Color   string
}

// Breakdown is the computed budget of a package.
type Breakdown struct {
	Price      int64
	Total      int64 // sum of inclusion costs
	Difference int64 // Price - Total
	Status     Status
	Magnitude  int64 // |Difference|
	Slices     []Slice
}

// palette cycles through chart colors; the last entry is reserved for the buffer.
var palette = []string{"#6366f1", "#f59e0b", "#10b981", "#ef4444", "#0ea5e9", "#a855f7", "#84cc16"}

const bufferColor = "#cbd5e1"

// Compute builds the breakdown for a package price and its inclusions.
// PRE: amounts are in cents
// POST: Difference == Price - Total; Magnitude == |Difference|;
// Status is Exact iff Difference == 0
func Compute(price int64, inclusions []Inclusion) Breakdown {
	b := Breakdown{Price: price}
	for _, inc := range inclusions {
		b.Total += inc.Cost
	}
	b.Difference = price - b.Total
	switch {
	case b.Difference < 0:
		b.Status = StatusOverage
		b.Magnitude = -b.Difference
	case b.Difference > 0:
		b.Status = StatusBuffer
		b.Magnitude = b.Difference
	default:
		b.Status = StatusExact
	}
	b.Slices = slices(b, inclusions)
	return b
}

// ShowBanner reports whether a buffer/overage banner should be displayed.
// INVARIANT: Breakdown is not mutated
func (b Breakdown) ShowBanner() bool {
	return b.Status != StatusExact
}

// ConicGradient renders the slices as a CSS conic-gradient value.
func (b Breakdown) ConicGradient() string {
	if len(b.Slices) == 0 {
		return "conic-gradient(" + bufferColor + " 0 100%)"
	}
	var parts []string
	start := 0.0
	for _, s := range b.Slices {
		end := start + s.Percent
		parts = append(parts, fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, start, end))
		start = end
	}
	return "conic-gradient(" + strings.Join(parts, ", ") + ")"
}

func slices(b Breakdown, inclusions []Inclusion) []Slice {
	base := b.Price
	if b.Total > base {
		base = b.Total
	}
	if base <= 0 {
		return nil
	}
	out := make([]Slice, 0, len(inclusions)+1)
	for i, inc := range inclusions {
		if inc.Cost <= 0 {
			continue
		}
		out = append(out, Slice{
			Label:   inc.Name,
			Amount:  inc.Cost,
			Percent: percent(inc.Cost, base),
			Color:   palette[i%len(palette)],
		})
	}
	if b.Status == StatusBuffer {
		out = append(out, Slice{
			Label:   "Buffer",
			Amount:  b.Magnitude,
			Percent: percent(b.Magnitude, base),
			Color:   bufferColor,
		})
	}
	return out
}

func percent(part, whole int64) float64 {
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

// ToCents converts an API decimal amount to cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FormatCents renders cents as "1,234.50".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	whole := fmt.Sprintf("%d", c/100)
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)
	return fmt.Sprintf("%s%s.%02d", sign, strings.Join(grouped, ","), c%100)
}
