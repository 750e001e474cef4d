package export

import (
	"strings"
	"testing"
	"time"

	"komunalka/internal/core"
)

func ptr(v float64) *float64 { return &v }

func testApartment() core.Apartment {
	return core.Apartment{
		ID:      "demo",
		Name:    "Demo 1/1",
		Address: "вул. Демо, 1",
		Services: []core.Service{
			{Name: "Світло", Kind: core.Meter, Unit: "кВт·год", UnitPrice: 4.32},
			{Name: "Інтернет", Kind: core.Fixed, Unit: "грн", FixedAmount: 350},
			{Name: "Опалення", Kind: core.Seasonal, Unit: "грн", FixedAmount: 1200, WinterOnly: true},
		},
	}
}

func testSummary() core.PeriodSummary {
	entry := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	return core.PeriodSummary{
		Period:        "2025-03",
		ApartmentID:   "demo",
		ApartmentName: "Demo 1/1",
		TotalAmount:   216,
		CalculatedAt:  entry,
		Readings: []core.ReadingRecord{
			{
				ServiceName:     "Світло",
				ApartmentID:     "demo",
				CurrentReading:  150,
				Period:          "2025-03",
				EntryDate:       entry,
				UnitPrice:       ptr(4.32),
				Amount:          216,
				Consumption:     ptr(50),
				PreviousReading: ptr(100),
			},
		},
	}
}

func TestBuildRowsAddsUnrecordedFixedServices(t *testing.T) {
	rows := BuildRows([]core.Apartment{testApartment()}, []core.PeriodSummary{testSummary()}, "2025-03")

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	meter := rows[0]
	if meter.ServiceName != "Світло" || meter.CalculatedAmount != 216 {
		t.Errorf("unexpected meter row: %+v", meter)
	}
	if meter.CurrentReading == nil || *meter.CurrentReading != 150 {
		t.Errorf("expected current reading 150, got %v", meter.CurrentReading)
	}
	if meter.FixedAmount != nil {
		t.Errorf("meter row should have no fixed amount")
	}

	names := map[string]float64{}
	for _, row := range rows[1:] {
		names[row.ServiceName] = row.CalculatedAmount
	}
	if names["Інтернет"] != 350 || names["Опалення"] != 1200 {
		t.Errorf("unexpected catalog rows: %v", names)
	}
}

func TestBuildRowsSkipsRecordedFixedServices(t *testing.T) {
	summary := testSummary()
	summary.Readings = append(summary.Readings, core.ReadingRecord{
		ServiceName: "Інтернет",
		ApartmentID: "demo",
		Period:      "2025-03",
		EntryDate:   summary.CalculatedAt,
		Amount:      350,
	})

	rows := BuildRows([]core.Apartment{testApartment()}, []core.PeriodSummary{summary}, "2025-03")

	count := 0
	for _, row := range rows {
		if row.ServiceName == "Інтернет" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one internet row, got %d", count)
	}
}

func TestBuildRowsFiltersPeriod(t *testing.T) {
	rows := BuildRows([]core.Apartment{testApartment()}, []core.PeriodSummary{testSummary()}, "2025-04")
	if len(rows) != 0 {
		t.Errorf("expected no rows for other period, got %d", len(rows))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	rows := BuildRows([]core.Apartment{testApartment()}, []core.PeriodSummary{testSummary()}, "2025-03")
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("missing byte-order mark")
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Квартира") || !strings.Contains(lines[0], "Дата розрахунку") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"Світло"`) || !strings.Contains(lines[1], "216") {
		t.Errorf("unexpected meter line: %s", lines[1])
	}
	if !strings.Contains(lines[1], "15.03.2025") {
		t.Errorf("expected dd.mm.yyyy date, got: %s", lines[1])
	}
	// Fixed services carry no readings: those cells must be empty.
	var fixedLine string
	for _, line := range lines[1:] {
		if strings.Contains(line, `"Інтернет"`) {
			fixedLine = line
		}
	}
	if !strings.Contains(fixedLine, ",,,,") {
		t.Errorf("expected empty reading cells on fixed line: %s", fixedLine)
	}
}

func TestStrings(t *testing.T) {
	rows := BuildRows([]core.Apartment{testApartment()}, []core.PeriodSummary{testSummary()}, "2025-03")
	cells := Strings(rows)
	if len(cells) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cells))
	}
	if len(cells[0]) != len(Headers) {
		t.Errorf("expected %d cells, got %d", len(Headers), len(cells[0]))
	}
	if cells[0][3] != "Світло" {
		t.Errorf("unexpected service cell: %s", cells[0][3])
	}
}
