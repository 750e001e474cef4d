package core

import "time"

// Calculate produces the billing result for one apartment and period
// from the user-entered readings. Services are processed in catalog
// order; a line item is emitted only when it bills a positive amount.
//
// Incomplete or inconsistent meter input (missing entry, current below
// previous) is not an error: the service is treated as not yet read
// and contributes nothing, so partial data never corrupts a total.
func Calculate(apt Apartment, inputs map[string]ReadingInput, period Period, now time.Time) CalculationResult {
	result := CalculationResult{
		ApartmentID:   apt.ID,
		ApartmentName: apt.Name,
		Period:        period,
		CalculatedAt:  now,
	}

	winter := period.IsWinter()
	for _, svc := range apt.Services {
		if svc.WinterOnly && !winter {
			continue
		}

		switch svc.Kind {
		case Fixed, Seasonal:
			if svc.FixedAmount > 0 {
				result.Lines = append(result.Lines, LineItem{
					Name:   svc.Name,
					Amount: Round2(svc.FixedAmount),
					Unit:   svc.Unit,
				})
			}

		case LumpSum:
			in, ok := inputs[svc.Name]
			if !ok || in.Current <= 0 {
				continue
			}
			result.Lines = append(result.Lines, LineItem{
				Name:           svc.Name,
				CurrentReading: ptr(in.Current),
				Amount:         Round2(in.Current),
				Unit:           svc.Unit,
			})

		case Meter:
			in, ok := inputs[svc.Name]
			if !ok {
				continue
			}
			prev := RoundReading(in.Previous)
			curr := RoundReading(in.Current)
			if curr < prev {
				continue
			}
			consumption := curr - prev
			amount := Round2(consumption * svc.UnitPrice)
			if amount <= 0 {
				continue
			}
			unitPrice := svc.UnitPrice
			result.Lines = append(result.Lines, LineItem{
				Name:            svc.Name,
				PreviousReading: ptr(prev),
				CurrentReading:  ptr(curr),
				Consumption:     ptr(consumption),
				UnitPrice:       &unitPrice,
				Amount:          amount,
				Unit:            svc.Unit,
			})
		}
	}

	var total float64
	for _, line := range result.Lines {
		total += line.Amount
	}
	result.TotalAmount = Round2(total)
	return result
}

// CanCalculate is the readiness gate: every meter-kind service needs a
// valid input before the calculator may run. Lump-sum services need a
// positive amount; ordinary meters need current >= previous after
// whole-unit rounding. Fixed and seasonal services never block.
func CanCalculate(apt Apartment, inputs map[string]ReadingInput) bool {
	for _, svc := range apt.Services {
		switch svc.Kind {
		case LumpSum:
			in, ok := inputs[svc.Name]
			if !ok || in.Current <= 0 {
				return false
			}
		case Meter:
			in, ok := inputs[svc.Name]
			if !ok || RoundReading(in.Current) < RoundReading(in.Previous) {
				return false
			}
		}
	}
	return true
}
