package core

import "time"

type (
	// ReadingRecord is the persisted history atom: one billed service
	// line for one apartment and period. At most one record exists per
	// (apartment, period, service name); saving again replaces it.
	ReadingRecord struct {
		ServiceName     string    `json:"serviceName"`
		ApartmentID     string    `json:"apartmentId"`
		PreviousReading *float64  `json:"previousReading,omitempty"`
		CurrentReading  float64   `json:"currentReading"`
		Period          Period    `json:"period"`
		EntryDate       time.Time `json:"entryDate"`
		UnitPrice       *float64  `json:"unitPrice,omitempty"`
		Amount          float64   `json:"amount"`
		Consumption     *float64  `json:"consumption,omitempty"`
	}

	// PeriodSummary is the persisted roll-up of one calculation. At
	// most one exists per (apartment, period).
	PeriodSummary struct {
		Period        Period          `json:"period"`
		ApartmentID   string          `json:"apartmentId"`
		ApartmentName string          `json:"apartmentName"`
		TotalAmount   float64         `json:"totalAmount"`
		CalculatedAt  time.Time       `json:"calculatedAt"`
		Readings      []ReadingRecord `json:"readings"`
	}

	// HistoryStatistics is a read-only aggregate over all records.
	HistoryStatistics struct {
		TotalPeriods       int        `json:"totalPeriods"`
		TotalReadings      int        `json:"totalReadings"`
		ApartmentsWithData []string   `json:"apartmentsWithData"`
		LastUpdate         *time.Time `json:"lastUpdate"`
	}
)

// Records flattens the result's line items into history records.
// CurrentReading defaults to 0 for services without readings.
func (r CalculationResult) Records() []ReadingRecord {
	records := make([]ReadingRecord, 0, len(r.Lines))
	for _, line := range r.Lines {
		rec := ReadingRecord{
			ServiceName:     line.Name,
			ApartmentID:     r.ApartmentID,
			PreviousReading: line.PreviousReading,
			Period:          r.Period,
			EntryDate:       r.CalculatedAt,
			UnitPrice:       line.UnitPrice,
			Amount:          line.Amount,
			Consumption:     line.Consumption,
		}
		if line.CurrentReading != nil {
			rec.CurrentReading = *line.CurrentReading
		}
		records = append(records, rec)
	}
	return records
}

// Summary builds the period roll-up for the result.
func (r CalculationResult) Summary() PeriodSummary {
	return PeriodSummary{
		Period:        r.Period,
		ApartmentID:   r.ApartmentID,
		ApartmentName: r.ApartmentName,
		TotalAmount:   r.TotalAmount,
		CalculatedAt:  r.CalculatedAt,
		Readings:      r.Records(),
	}
}
