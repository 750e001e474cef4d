package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"komunalka/internal/core"
	"komunalka/internal/ledger"
)

// LedgerStore implements the ledger port on the relational tables.
// Periods are stored normalized to the first of the month.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping ledger: %w", err)
	}
	return nil
}

func (s *LedgerStore) Apartments(ctx context.Context) ([]ledger.Apartment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM apartments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query apartments: %w", err)
	}
	defer rows.Close()

	var out []ledger.Apartment
	for rows.Next() {
		var apt ledger.Apartment
		if err := rows.Scan(&apt.ID, &apt.Name); err != nil {
			return nil, fmt.Errorf("scan apartment: %w", err)
		}
		out = append(out, apt)
	}
	return out, rows.Err()
}

func (s *LedgerStore) Apartment(ctx context.Context, id string) (ledger.Apartment, error) {
	var apt ledger.Apartment
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM apartments WHERE id = ?`, id).
		Scan(&apt.ID, &apt.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Apartment{}, ledger.ErrApartmentNotFound
	}
	if err != nil {
		return ledger.Apartment{}, fmt.Errorf("query apartment %s: %w", id, err)
	}
	return apt, nil
}

func (s *LedgerStore) Readings(ctx context.Context, apartmentID string, period core.Period) ([]ledger.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT apartment_id, resource, period, prev_value, curr_value
		FROM readings
		WHERE apartment_id = ? AND period = ?
		ORDER BY resource`,
		apartmentID, periodDate(period))
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []ledger.Reading
	for rows.Next() {
		var (
			r      ledger.Reading
			rawDay string
		)
		if err := rows.Scan(&r.ApartmentID, &r.Resource, &rawDay, &r.PrevValue, &r.CurrValue); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		r.Period, err = parsePeriodDate(rawDay)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *LedgerStore) UpsertReading(ctx context.Context, r ledger.Reading) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (apartment_id, resource, period, prev_value, curr_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (apartment_id, resource, period)
		DO UPDATE SET prev_value = excluded.prev_value, curr_value = excluded.curr_value`,
		r.ApartmentID, r.Resource, periodDate(r.Period), r.PrevValue, r.CurrValue)
	if err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

func (s *LedgerStore) Tariffs(ctx context.Context, apartmentID string) ([]ledger.Tariff, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT apartment_id, resource, valid_from, unit_price, is_fixed, fixed_amount
		FROM tariffs
		WHERE apartment_id IS NULL OR apartment_id = ?
		ORDER BY resource, valid_from`,
		apartmentID)
	if err != nil {
		return nil, fmt.Errorf("query tariffs: %w", err)
	}
	defer rows.Close()

	var out []ledger.Tariff
	for rows.Next() {
		var (
			t        ledger.Tariff
			aptID    sql.NullString
			rawValid string
		)
		if err := rows.Scan(&aptID, &t.Resource, &rawValid, &t.UnitPrice, &t.IsFixed, &t.FixedAmount); err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		if aptID.Valid {
			id := aptID.String
			t.ApartmentID = &id
		}
		t.ValidFrom, err = parseDate(rawValid)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *LedgerStore) FixedPayments(ctx context.Context, apartmentID string, period core.Period) ([]ledger.FixedPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT apartment_id, period, name, amount
		FROM fixed_payments
		WHERE apartment_id = ? AND period = ?
		ORDER BY name`,
		apartmentID, periodDate(period))
	if err != nil {
		return nil, fmt.Errorf("query fixed payments: %w", err)
	}
	defer rows.Close()

	var out []ledger.FixedPayment
	for rows.Next() {
		var (
			p      ledger.FixedPayment
			rawDay string
		)
		if err := rows.Scan(&p.ApartmentID, &rawDay, &p.Name, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan fixed payment: %w", err)
		}
		p.Period, err = parsePeriodDate(rawDay)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *LedgerStore) UpsertFixedPayment(ctx context.Context, p ledger.FixedPayment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_payments (apartment_id, period, name, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (apartment_id, period, name)
		DO UPDATE SET amount = excluded.amount`,
		p.ApartmentID, periodDate(p.Period), p.Name, p.Amount)
	if err != nil {
		return fmt.Errorf("upsert fixed payment: %w", err)
	}
	return nil
}

// periodDate renders a period as its first-of-month date string.
func periodDate(p core.Period) string {
	return p.String() + "-01"
}

func parsePeriodDate(raw string) (core.Period, error) {
	t, err := parseDate(raw)
	if err != nil {
		return "", err
	}
	return core.CurrentPeriod(t), nil
}

func parseDate(raw string) (time.Time, error) {
	// SQLite may hand dates back with or without a time component.
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", raw)
}
