package retirement

import "github.com/etnz/retirement/date"

// IsLongTerm reports whether an asset acquired on acquired has been held for
// at least a year on on, which qualifies its sale for long-term capital gains.
//
// An unknown acquisition date is considered long-term, the same default the
// lot ingestion applies.
func IsLongTerm(acquired, on date.Date) bool {
	if acquired.IsZero() {
		return true
	}
	return !acquired.After(on.YearBefore())
}

// ShortTermSales returns the sales of plan that are not long-term on on.
func ShortTermSales(plan Plan, on date.Date) Plan {
	var res Plan
	for _, s := range plan {
		if !IsLongTerm(s.Acquired, on) {
			res = append(res, s)
		}
	}
	return res
}
