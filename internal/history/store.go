// Package history persists calculation results period over period and
// seeds the next period's baseline readings from the previous one.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"komunalka/internal/core"
)

// Storage namespace keys, kept stable across versions: existing data
// written under these keys must stay readable.
const (
	readingsKey = "utility_calculator_history"
	periodsKey  = "utility_calculator_periods"
)

// KV is the outbound port to the persistent key-value layer. PutMany
// must apply all writes atomically: readers never observe records
// without their summary or vice versa.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil when absent
	PutMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save persists the result's reading records and period summary in one
// atomic write, replacing any prior data for the same apartment and
// period. Calling it twice with the same result is a no-op upsert.
func (s *Store) Save(ctx context.Context, result core.CalculationResult) error {
	records, err := s.Readings(ctx)
	if err != nil {
		return fmt.Errorf("load readings: %w", err)
	}
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ApartmentID == result.ApartmentID && rec.Period == result.Period {
			continue
		}
		kept = append(kept, rec)
	}
	kept = append(kept, result.Records()...)

	keptSummaries := summaries[:0]
	for _, sum := range summaries {
		if sum.ApartmentID == result.ApartmentID && sum.Period == result.Period {
			continue
		}
		keptSummaries = append(keptSummaries, sum)
	}
	keptSummaries = append(keptSummaries, result.Summary())

	recordsJSON, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal readings: %w", err)
	}
	summariesJSON, err := json.Marshal(keptSummaries)
	if err != nil {
		return fmt.Errorf("marshal summaries: %w", err)
	}

	if err := s.kv.PutMany(ctx, map[string][]byte{
		readingsKey: recordsJSON,
		periodsKey:  summariesJSON,
	}); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}

	slog.InfoContext(ctx, "Saved calculation to history",
		"apartment_id", result.ApartmentID,
		"period", result.Period.String(),
		"line_items", len(result.Lines),
		"total", result.TotalAmount)

	return nil
}

// Readings returns every persisted reading record.
func (s *Store) Readings(ctx context.Context) ([]core.ReadingRecord, error) {
	raw, err := s.kv.Get(ctx, readingsKey)
	if err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var records []core.ReadingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("unmarshal readings: %w", err)
	}
	return records, nil
}

// ReadingsByPeriod returns the records for one period across apartments.
func (s *Store) ReadingsByPeriod(ctx context.Context, period core.Period) ([]core.ReadingRecord, error) {
	records, err := s.Readings(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.ReadingRecord
	for _, rec := range records {
		if rec.Period == period {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Summaries returns every persisted period summary.
func (s *Store) Summaries(ctx context.Context) ([]core.PeriodSummary, error) {
	raw, err := s.kv.Get(ctx, periodsKey)
	if err != nil {
		return nil, fmt.Errorf("get summaries: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var summaries []core.PeriodSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal summaries: %w", err)
	}
	return summaries, nil
}

// SummariesByPeriod returns the summaries for one period.
func (s *Store) SummariesByPeriod(ctx context.Context, period core.Period) ([]core.PeriodSummary, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.PeriodSummary
	for _, sum := range summaries {
		if sum.Period == period {
			out = append(out, sum)
		}
	}
	return out, nil
}

// PreviousPeriodReadings returns the prior period's recorded current
// readings keyed by service name, rounded to whole units, for use as
// the next period's baseline. No prior data yields an empty map.
func (s *Store) PreviousPeriodReadings(ctx context.Context, apartmentID string, current core.Period) (map[string]float64, error) {
	previous := current.Previous()
	records, err := s.Readings(ctx)
	if err != nil {
		return nil, err
	}

	baseline := make(map[string]float64)
	for _, rec := range records {
		if rec.ApartmentID != apartmentID || rec.Period != previous {
			continue
		}
		baseline[rec.ServiceName] = core.RoundReading(rec.CurrentReading)
	}
	return baseline, nil
}

// Statistics recomputes the aggregate view over the full record set.
func (s *Store) Statistics(ctx context.Context) (core.HistoryStatistics, error) {
	records, err := s.Readings(ctx)
	if err != nil {
		return core.HistoryStatistics{}, err
	}

	periods := make(map[core.Period]struct{})
	apartments := make(map[string]struct{})
	stats := core.HistoryStatistics{TotalReadings: len(records)}
	for _, rec := range records {
		periods[rec.Period] = struct{}{}
		apartments[rec.ApartmentID] = struct{}{}
		if stats.LastUpdate == nil || rec.EntryDate.After(*stats.LastUpdate) {
			entry := rec.EntryDate
			stats.LastUpdate = &entry
		}
	}
	stats.TotalPeriods = len(periods)
	for id := range apartments {
		stats.ApartmentsWithData = append(stats.ApartmentsWithData, id)
	}
	sort.Strings(stats.ApartmentsWithData)
	return stats, nil
}

// Clear removes all history. There is no partial delete.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, readingsKey, periodsKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	slog.InfoContext(ctx, "History cleared")
	return nil
}
