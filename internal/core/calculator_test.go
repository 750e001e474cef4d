package core

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestCalculateMeterAndFixed(t *testing.T) {
	apt := Apartment{
		ID:   "apt1",
		Name: "Test apartment",
		Services: []Service{
			{Name: "Світло День", Kind: Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Домофон", Kind: Fixed, Unit: "грн", FixedAmount: 70},
		},
	}
	inputs := map[string]ReadingInput{
		"Світло День": {Previous: 100, Current: 150},
	}

	res := Calculate(apt, inputs, "2025-03", testNow)

	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(res.Lines))
	}
	meter := res.Lines[0]
	if meter.Consumption == nil || *meter.Consumption != 50 {
		t.Errorf("expected consumption 50, got %v", meter.Consumption)
	}
	if meter.Amount != 216.00 {
		t.Errorf("expected meter amount 216.00, got %v", meter.Amount)
	}
	if res.Lines[1].Amount != 70 {
		t.Errorf("expected fixed amount 70, got %v", res.Lines[1].Amount)
	}
	if res.TotalAmount != 286.00 {
		t.Errorf("expected total 286.00, got %v", res.TotalAmount)
	}
}

func TestCalculateLumpSum(t *testing.T) {
	apt := Apartment{
		ID:       "apt1",
		Services: []Service{{Name: "ОСББ", Kind: LumpSum, Unit: "грн"}},
	}

	res := Calculate(apt, map[string]ReadingInput{"ОСББ": {Current: 477.08}}, "2025-03", testNow)

	if len(res.Lines) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(res.Lines))
	}
	line := res.Lines[0]
	if line.Amount != 477.08 {
		t.Errorf("expected amount 477.08, got %v", line.Amount)
	}
	if line.Consumption != nil {
		t.Error("lump-sum line must not carry consumption")
	}
	if line.PreviousReading != nil {
		t.Error("lump-sum line must not carry a previous reading")
	}
	if res.TotalAmount != 477.08 {
		t.Errorf("expected total 477.08, got %v", res.TotalAmount)
	}

	// Non-positive amount produces no line item.
	res = Calculate(apt, map[string]ReadingInput{"ОСББ": {Current: 0}}, "2025-03", testNow)
	if len(res.Lines) != 0 || res.TotalAmount != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestCalculateSkipsInconsistentMeter(t *testing.T) {
	apt := Apartment{
		ID: "apt1",
		Services: []Service{
			{Name: "Газ", Kind: Meter, Unit: "м³", UnitPrice: 7.89},
		},
	}

	t.Run("current below previous", func(t *testing.T) {
		res := Calculate(apt, map[string]ReadingInput{"Газ": {Previous: 200, Current: 150}}, "2025-03", testNow)
		if len(res.Lines) != 0 {
			t.Errorf("expected no line items, got %d", len(res.Lines))
		}
	})

	t.Run("missing input", func(t *testing.T) {
		res := Calculate(apt, nil, "2025-03", testNow)
		if len(res.Lines) != 0 {
			t.Errorf("expected no line items, got %d", len(res.Lines))
		}
	})

	t.Run("readings rounded before comparison", func(t *testing.T) {
		// 150.4 rounds to 150, 149.6 rounds to 150: zero consumption, no line.
		res := Calculate(apt, map[string]ReadingInput{"Газ": {Previous: 149.6, Current: 150.4}}, "2025-03", testNow)
		if len(res.Lines) != 0 {
			t.Errorf("expected no line items for zero consumption, got %d", len(res.Lines))
		}
	})
}

func TestCalculateWinterGate(t *testing.T) {
	apt := Apartment{
		ID: "apt1",
		Services: []Service{
			{Name: "Опалення в зимовий період", Kind: Seasonal, Unit: "грн", FixedAmount: 1200, WinterOnly: true},
		},
	}

	winter := Calculate(apt, nil, "2025-01", testNow)
	if len(winter.Lines) != 1 || winter.TotalAmount != 1200 {
		t.Errorf("winter period should bill the seasonal service, got %+v", winter)
	}

	summer := Calculate(apt, nil, "2025-07", testNow)
	if len(summer.Lines) != 0 || summer.TotalAmount != 0 {
		t.Errorf("summer period must skip the seasonal service, got %+v", summer)
	}
}

func TestCalculateTotalMatchesLineSum(t *testing.T) {
	apt := Apartment{
		ID: "apt1",
		Services: []Service{
			{Name: "Світло День", Kind: Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Світло Ніч", Kind: Meter, Unit: "кВт·год", UnitPrice: 2.16},
			{Name: "Вода", Kind: Meter, Unit: "м³", UnitPrice: 31.36},
			{Name: "ЖЕУ", Kind: Fixed, Unit: "грн", FixedAmount: 328.92},
			{Name: "Сміття", Kind: Fixed, Unit: "грн", FixedAmount: 33.57},
		},
	}
	inputs := map[string]ReadingInput{
		"Світло День": {Previous: 1000, Current: 1137},
		"Світло Ніч":  {Previous: 500, Current: 623},
		"Вода":        {Previous: 42, Current: 49},
	}

	res := Calculate(apt, inputs, "2025-03", testNow)

	var sum float64
	for _, line := range res.Lines {
		sum += line.Amount
	}
	if res.TotalAmount != Round2(sum) {
		t.Errorf("total %v does not reproduce rounded line sum %v", res.TotalAmount, Round2(sum))
	}
}

func TestCanCalculate(t *testing.T) {
	apt := Apartment{
		ID: "apt1",
		Services: []Service{
			{Name: "Світло День", Kind: Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "ОСББ", Kind: LumpSum, Unit: "грн"},
			{Name: "Орендна плата", Kind: Fixed, Unit: "грн", FixedAmount: 9500},
		},
	}

	tests := []struct {
		name   string
		inputs map[string]ReadingInput
		want   bool
	}{
		{"all valid", map[string]ReadingInput{
			"Світло День": {Previous: 10, Current: 20},
			"ОСББ":        {Current: 100},
		}, true},
		{"missing meter", map[string]ReadingInput{
			"ОСББ": {Current: 100},
		}, false},
		{"current below previous", map[string]ReadingInput{
			"Світло День": {Previous: 30, Current: 20},
			"ОСББ":        {Current: 100},
		}, false},
		{"lump sum zero", map[string]ReadingInput{
			"Світло День": {Previous: 10, Current: 20},
			"ОСББ":        {Current: 0},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCalculate(apt, tt.inputs); got != tt.want {
				t.Errorf("CanCalculate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{216.004, 216.00},
		{216.006, 216.01},
		{0.1 + 0.2, 0.3},
		{477.08, 477.08},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
