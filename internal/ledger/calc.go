package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"komunalka/internal/core"
)

// Calculator runs the billing rules against the relational store.
type Calculator struct {
	store Store
}

func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store}
}

// Calculate computes the bill for one apartment and period. The three
// lookups are independent reads and are issued concurrently.
//
// Each metered resource with a resolvable tariff becomes a meter
// service plus a reading input; fixed-flagged tariffs and ad hoc fixed
// payments become fixed services. Resources with no matching tariff
// are skipped rather than failing the calculation.
func (c *Calculator) Calculate(ctx context.Context, apartmentID string, period core.Period) (core.CalculationResult, error) {
	apt, err := c.store.Apartment(ctx, apartmentID)
	if err != nil {
		return core.CalculationResult{}, fmt.Errorf("load apartment %s: %w", apartmentID, err)
	}

	var (
		readings []Reading
		tariffs  []Tariff
		payments []FixedPayment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		readings, err = c.store.Readings(gctx, apartmentID, period)
		if err != nil {
			return fmt.Errorf("load readings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tariffs, err = c.store.Tariffs(gctx, apartmentID)
		if err != nil {
			return fmt.Errorf("load tariffs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = c.store.FixedPayments(gctx, apartmentID, period)
		if err != nil {
			return fmt.Errorf("load fixed payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.CalculationResult{}, err
	}

	services := make([]core.Service, 0, len(readings)+len(tariffs)+len(payments))
	inputs := make(map[string]core.ReadingInput, len(readings))

	for _, r := range readings {
		tariff, ok := ResolveTariff(tariffs, r.Resource, period)
		if !ok {
			slog.WarnContext(ctx, "No tariff for resource, skipping",
				"apartment_id", apartmentID,
				"resource", r.Resource,
				"period", period.String())
			continue
		}
		if tariff.IsFixed {
			// A fixed-flagged tariff bills its amount regardless of the
			// reading row; handled below with the other fixed tariffs.
			continue
		}
		services = append(services, core.Service{
			Name:      r.Resource,
			Kind:      core.Meter,
			UnitPrice: tariff.UnitPrice,
		})
		inputs[r.Resource] = core.ReadingInput{Previous: r.PrevValue, Current: r.CurrValue}
	}

	// Fixed-flagged tariffs bill verbatim for every period they cover.
	seen := make(map[string]struct{})
	for _, t := range tariffs {
		if !t.IsFixed {
			continue
		}
		if _, dup := seen[t.Resource]; dup {
			continue
		}
		resolved, ok := ResolveTariff(tariffs, t.Resource, period)
		if !ok || !resolved.IsFixed {
			continue
		}
		seen[t.Resource] = struct{}{}
		services = append(services, core.Service{
			Name:        t.Resource,
			Kind:        core.Fixed,
			FixedAmount: resolved.FixedAmount,
		})
	}

	for _, p := range payments {
		services = append(services, core.Service{
			Name:        p.Name,
			Kind:        core.Fixed,
			FixedAmount: p.Amount,
		})
	}

	result := core.Calculate(core.Apartment{
		ID:       apt.ID,
		Name:     apt.Name,
		Services: services,
	}, inputs, period, time.Now())

	slog.InfoContext(ctx, "Ledger calculation complete",
		"apartment_id", apartmentID,
		"period", period.String(),
		"line_items", len(result.Lines),
		"total", result.TotalAmount)

	return result, nil
}
