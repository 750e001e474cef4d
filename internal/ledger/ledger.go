// Package ledger computes bills from the relational store: apartments,
// readings, versioned tariffs, and ad hoc fixed payments. It maps rows
// into the core rule engine so both calculation paths share one rule
// set.
package ledger

import (
	"context"
	"errors"
	"time"

	"komunalka/internal/core"
)

var (
	ErrApartmentNotFound = errors.New("apartment not found")
)

type (
	Apartment struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Reading is one meter row, unique on (apartment, resource, period).
	Reading struct {
		ApartmentID string      `json:"apartmentId"`
		Resource    string      `json:"resource"`
		Period      core.Period `json:"period"`
		PrevValue   float64     `json:"prevValue"`
		CurrValue   float64     `json:"currValue"`
	}

	// Tariff is a versioned price row. ApartmentID is nil for global
	// tariffs; an apartment-specific row wins over a global one.
	Tariff struct {
		ApartmentID *string   `json:"apartmentId"`
		Resource    string    `json:"resource"`
		ValidFrom   time.Time `json:"validFrom"`
		UnitPrice   float64   `json:"unitPrice"`
		IsFixed     bool      `json:"isFixed"`
		FixedAmount float64   `json:"fixedAmount"`
	}

	// FixedPayment is an ad hoc per-period fixed charge.
	FixedPayment struct {
		ApartmentID string      `json:"apartmentId"`
		Period      core.Period `json:"period"`
		Name        string      `json:"name"`
		Amount      float64     `json:"amount"`
	}
)

// Store is the outbound port to the relational layer. Upserts rely on
// insert-or-update-on-key-conflict so concurrent writes for the same
// key are last-write-wins.
type Store interface {
	Ping(ctx context.Context) error
	Apartments(ctx context.Context) ([]Apartment, error)
	Apartment(ctx context.Context, id string) (Apartment, error)
	Readings(ctx context.Context, apartmentID string, period core.Period) ([]Reading, error)
	UpsertReading(ctx context.Context, r Reading) error
	Tariffs(ctx context.Context, apartmentID string) ([]Tariff, error)
	FixedPayments(ctx context.Context, apartmentID string, period core.Period) ([]FixedPayment, error)
	UpsertFixedPayment(ctx context.Context, p FixedPayment) error
}

// ResolveTariff picks the tariff for a resource: the row with the
// latest valid_from not after the period start, preferring an
// apartment-specific row over a global one when both qualify.
func ResolveTariff(tariffs []Tariff, resource string, period core.Period) (Tariff, bool) {
	periodStart := period.Time()

	var best Tariff
	found := false
	for _, t := range tariffs {
		if t.Resource != resource || t.ValidFrom.After(periodStart) {
			continue
		}
		if !found {
			best, found = t, true
			continue
		}
		bestSpecific := best.ApartmentID != nil
		candSpecific := t.ApartmentID != nil
		switch {
		case candSpecific && !bestSpecific:
			best = t
		case candSpecific == bestSpecific && t.ValidFrom.After(best.ValidFrom):
			best = t
		}
	}
	return best, found
}
