package retirement

// TaxEfficiency rates how much room a lot set leaves to harvest high cost
// basis lots.
type TaxEfficiency struct {
	Score   Score
	Message string
}

var (
	highBasis = Dollars(40000)
	lowBasis  = Dollars(20000)
)

// RateTaxEfficiency scores lots: 30 points per lot above the high basis mark,
// minus 15 per lot under the low one.
func RateTaxEfficiency(lots []Lot) TaxEfficiency {
	if len(lots) == 0 {
		return TaxEfficiency{Score: 0, Message: "No tax lots loaded"}
	}
	var high, low int
	for _, l := range lots {
		switch {
		case l.CostBasis.GreaterThan(highBasis):
			high++
		case l.CostBasis.LessThan(lowBasis):
			low++
		}
	}
	score := clampScore(float64(high*30 - low*15))
	msg := "Low"
	switch {
	case score >= 70:
		msg = "High"
	case score >= 40:
		msg = "Medium"
	}
	return TaxEfficiency{Score: score, Message: msg}
}
