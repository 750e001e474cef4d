package ledger_test

import (
	"context"
	"testing"
	"time"

	"komunalka/internal/core"
	"komunalka/internal/ledger"
	"komunalka/internal/ledger/memory"
)

func strptr(s string) *string { return &s }

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestResolveTariff(t *testing.T) {
	tariffs := []ledger.Tariff{
		{Resource: "electricity", ValidFrom: date(2024, 1, 1), UnitPrice: 4.00},
		{Resource: "electricity", ValidFrom: date(2025, 1, 1), UnitPrice: 4.32},
		{Resource: "electricity", ValidFrom: date(2026, 1, 1), UnitPrice: 5.00},
		{ApartmentID: strptr("apt1"), Resource: "electricity", ValidFrom: date(2024, 6, 1), UnitPrice: 3.90},
		{Resource: "water", ValidFrom: date(2024, 1, 1), UnitPrice: 31.36},
	}

	t.Run("latest valid_from not after period", func(t *testing.T) {
		got, ok := ledger.ResolveTariff(tariffs, "water", "2025-03")
		if !ok || got.UnitPrice != 31.36 {
			t.Fatalf("ResolveTariff = %+v, %v", got, ok)
		}
	})

	t.Run("future tariff not selected", func(t *testing.T) {
		// Only the global rows qualify for an apartment with no
		// specific tariff; 2026 price must not leak into 2025.
		globals := tariffs[:3]
		got, ok := ledger.ResolveTariff(globals, "electricity", "2025-03")
		if !ok || got.UnitPrice != 4.32 {
			t.Fatalf("expected 2025 price 4.32, got %+v, %v", got, ok)
		}
	})

	t.Run("apartment-specific beats global", func(t *testing.T) {
		got, ok := ledger.ResolveTariff(tariffs, "electricity", "2025-03")
		if !ok || got.UnitPrice != 3.90 {
			t.Fatalf("expected apartment tariff 3.90, got %+v, %v", got, ok)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if _, ok := ledger.ResolveTariff(tariffs, "gas", "2025-03"); ok {
			t.Error("expected no tariff for gas")
		}
	})
}

func newTestStore() *memory.Store {
	return memory.New(
		[]ledger.Apartment{{ID: "apt1", Name: "Мечнікова 5/20"}},
		[]ledger.Tariff{
			{Resource: "electricity_day", ValidFrom: date(2024, 1, 1), UnitPrice: 4.32},
			{Resource: "water", ValidFrom: date(2024, 1, 1), UnitPrice: 31.36},
			{Resource: "intercom", ValidFrom: date(2024, 1, 1), IsFixed: true, FixedAmount: 70},
		},
	)
}

func TestCalculate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	calc := ledger.NewCalculator(store)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(store.UpsertReading(ctx, ledger.Reading{
		ApartmentID: "apt1", Resource: "electricity_day", Period: "2025-03",
		PrevValue: 100, CurrValue: 150,
	}))
	must(store.UpsertFixedPayment(ctx, ledger.FixedPayment{
		ApartmentID: "apt1", Period: "2025-03", Name: "rent", Amount: 9500,
	}))

	res, err := calc.Calculate(ctx, "apt1", "2025-03")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// electricity 50*4.32 = 216, fixed tariff 70, fixed payment 9500.
	if res.TotalAmount != 9786.00 {
		t.Errorf("expected total 9786.00, got %v", res.TotalAmount)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("expected 3 line items, got %d", len(res.Lines))
	}

	byName := make(map[string]core.LineItem)
	for _, line := range res.Lines {
		byName[line.Name] = line
	}
	elec := byName["electricity_day"]
	if elec.Consumption == nil || *elec.Consumption != 50 || elec.Amount != 216.00 {
		t.Errorf("unexpected electricity line: %+v", elec)
	}
	if byName["intercom"].Amount != 70 {
		t.Errorf("unexpected intercom line: %+v", byName["intercom"])
	}
	if byName["rent"].Amount != 9500 {
		t.Errorf("unexpected rent line: %+v", byName["rent"])
	}
}

func TestCalculateSkipsResourceWithoutTariff(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	calc := ledger.NewCalculator(store)

	if err := store.UpsertReading(ctx, ledger.Reading{
		ApartmentID: "apt1", Resource: "gas", Period: "2025-03",
		PrevValue: 10, CurrValue: 20,
	}); err != nil {
		t.Fatal(err)
	}

	res, err := calc.Calculate(ctx, "apt1", "2025-03")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	for _, line := range res.Lines {
		if line.Name == "gas" {
			t.Error("resource without tariff must be skipped")
		}
	}
}

func TestCalculateUnknownApartment(t *testing.T) {
	calc := ledger.NewCalculator(newTestStore())
	if _, err := calc.Calculate(context.Background(), "nope", "2025-03"); err == nil {
		t.Error("expected error for unknown apartment")
	}
}

func TestUpsertReadingReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	r := ledger.Reading{ApartmentID: "apt1", Resource: "water", Period: "2025-03", PrevValue: 10, CurrValue: 15}
	if err := store.UpsertReading(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.CurrValue = 17
	if err := store.UpsertReading(ctx, r); err != nil {
		t.Fatal(err)
	}

	readings, err := store.Readings(ctx, "apt1", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 1 || readings[0].CurrValue != 17 {
		t.Errorf("expected single replaced reading, got %+v", readings)
	}
}
