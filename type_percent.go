package retirement

import "fmt"

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Score is a heuristic score clamped to [0, 100].
type Score float64

// clampScore bounds s to [0, 100].
func clampScore(s float64) Score {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return Score(s)
	}
}

func (s Score) String() string { return fmt.Sprintf("%.0f/100", float64(s)) }
