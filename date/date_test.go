package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2021-11-10", want: New(2021, time.November, 10)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2021-11-10 14:30:05", want: New(2021, time.November, 10)},
		{in: "2024-01-15T09:00:00Z", want: New(2024, time.January, 15)},
		{in: "", wantErr: true},
		{in: "10/11/2021", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestYearBefore(t *testing.T) {
	tests := []struct {
		on, want Date
	}{
		{New(2025, time.March, 15), New(2024, time.March, 15)},
		{New(2024, time.February, 29), New(2023, time.February, 28)},
		{New(2025, time.February, 28), New(2024, time.February, 28)},
		{New(2025, time.January, 1), New(2024, time.January, 1)},
	}
	for _, tt := range tests {
		if got := tt.on.YearBefore(); got != tt.want {
			t.Errorf("%v.YearBefore() = %v, want %v", tt.on, got, tt.want)
		}
	}
}

func TestAddMonth(t *testing.T) {
	tests := []struct {
		on   Date
		n    int
		want Date
	}{
		{New(2025, time.January, 15), 1, New(2025, time.February, 15)},
		{New(2025, time.January, 31), 1, New(2025, time.February, 28)},
		{New(2024, time.January, 31), 1, New(2024, time.February, 29)},
		{New(2025, time.November, 30), 3, New(2026, time.February, 28)},
		{New(2025, time.March, 31), -1, New(2025, time.February, 28)},
	}
	for _, tt := range tests {
		if got := tt.on.AddMonth(tt.n); got != tt.want {
			t.Errorf("%v.AddMonth(%d) = %v, want %v", tt.on, tt.n, got, tt.want)
		}
	}
}

func TestZero(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Error("zero Date should report IsZero")
	}
	if d.String() != "" {
		t.Errorf("zero Date String() = %q, want empty", d.String())
	}
	if New(2025, 1, 1).IsZero() {
		t.Error("2025-01-01 should not be zero")
	}
}

func TestJSON(t *testing.T) {
	in := New(2021, time.November, 10)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2021-11-10"` {
		t.Errorf("Marshal = %s", data)
	}
	var out Date
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("Unmarshal = %v, want %v", out, in)
	}
}

func TestDaysSince(t *testing.T) {
	if got := New(2025, time.January, 1).DaysSince(New(2024, time.January, 1)); got != 366 {
		t.Errorf("DaysSince = %d, want 366", got)
	}
}
