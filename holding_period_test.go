package retirement

import (
	"testing"

	"github.com/etnz/retirement/date"
)

func TestIsLongTerm(t *testing.T) {
	tests := []struct {
		acquired, on string
		want         bool
	}{
		{"2023-06-01", "2024-06-01", true},
		{"2023-06-02", "2024-06-01", false},
		{"2021-11-10", "2025-01-01", true},
		{"2024-01-15", "2024-06-01", false},
		{"2024-06-01", "2024-06-01", false},
		// no February 29th the year before
		{"2023-02-28", "2024-02-29", true},
		{"2023-03-01", "2024-02-29", false},
		{"2024-02-29", "2025-02-28", false},
		{"2024-02-29", "2025-03-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.acquired+"/"+tt.on, func(t *testing.T) {
			got := IsLongTerm(date.MustParse(tt.acquired), date.MustParse(tt.on))
			if got != tt.want {
				t.Errorf("IsLongTerm(%s, %s) = %v, want %v", tt.acquired, tt.on, got, tt.want)
			}
		})
	}
}

func TestIsLongTerm_UnknownDate(t *testing.T) {
	if !IsLongTerm(date.Date{}, date.New(2025, 1, 1)) {
		t.Error("an unknown acquisition date must be long-term")
	}
}

func TestShortTermSales(t *testing.T) {
	plan := SelectHIFO(Dollars(200000), Dollars(65000), sampleLots())

	short := ShortTermSales(plan, date.New(2024, 6, 1))
	if len(short) != 1 || short[0].LotID != "tx_12345" {
		t.Errorf("ShortTermSales() = %v, want [tx_12345]", short)
	}
	if short := ShortTermSales(plan, date.New(2025, 6, 1)); len(short) != 0 {
		t.Errorf("ShortTermSales() = %v, want none", short)
	}
}
