package retirement

import (
	"fmt"
	"strings"
)

// CostBasisMethod defines the order in which lots are liquidated.
type CostBasisMethod int

const (
	// HIFO (Highest-In, First-Out) sells the lots with the highest cost basis
	// per unit first, which minimizes the realized gain.
	HIFO CostBasisMethod = iota
	// FIFO (First-In, First-Out) sells the oldest lots first.
	FIFO
)

func (m CostBasisMethod) String() string {
	switch m {
	case HIFO:
		return "hifo"
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToLower(s) {
	case "hifo", "":
		return HIFO, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}
