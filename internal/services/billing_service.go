// Package services orchestrates bill calculation across the catalog,
// the history store, and the notification queue.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"komunalka/internal/catalog"
	"komunalka/internal/core"
	"komunalka/internal/export"
	"komunalka/internal/history"
	"komunalka/internal/notify"
	"komunalka/internal/sheets"
)

// BillingService calculates bills for catalog apartments, persists the
// results, and queues chat notifications.
type BillingService struct {
	store    *history.Store
	notifier notify.Notifier
	appender sheets.RowAppender
}

// NewBillingService wires the service. notifier and appender may be
// nil; the corresponding steps are then skipped.
func NewBillingService(store *history.Store, notifier notify.Notifier, appender sheets.RowAppender) *BillingService {
	return &BillingService{
		store:    store,
		notifier: notifier,
		appender: appender,
	}
}

// BillResult is the outcome of one calculate-and-save round.
type BillResult struct {
	Result     core.CalculationResult
	DeliveryID string
}

// CalculateBill validates the inputs, runs the calculation, persists
// the result, and queues a notification. Notification failures are
// logged but do not fail the request: the bill is already saved.
func (s *BillingService) CalculateBill(ctx context.Context, apartmentID string, inputs map[string]core.ReadingInput, period core.Period) (BillResult, error) {
	apt, ok := catalog.ByID(apartmentID)
	if !ok {
		return BillResult{}, fmt.Errorf("%w: %s", core.ErrUnknownApartment, apartmentID)
	}
	if !core.CanCalculate(apt, inputs) {
		return BillResult{}, fmt.Errorf("%w for apartment %s", core.ErrIncompleteInput, apartmentID)
	}

	result := core.Calculate(apt, inputs, period, time.Now())

	if err := s.store.Save(ctx, result); err != nil {
		return BillResult{}, fmt.Errorf("save calculation: %w", err)
	}

	out := BillResult{Result: result}
	if s.notifier != nil {
		deliveryID, err := s.notifier.Send(ctx, result)
		if err != nil {
			slog.ErrorContext(ctx, "failed to queue bill notification",
				"apartment_id", apartmentID,
				"period", period.String(),
				"error", err)
		} else {
			out.DeliveryID = deliveryID
		}
	}

	slog.InfoContext(ctx, "bill calculated",
		"apartment_id", apartmentID,
		"period", period.String(),
		"lines", len(result.Lines),
		"total_amount", result.TotalAmount)

	return out, nil
}

// Baseline returns the previous period's readings for prefilling the
// next period's form.
func (s *BillingService) Baseline(ctx context.Context, apartmentID string, period core.Period) (map[string]float64, error) {
	if _, ok := catalog.ByID(apartmentID); !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownApartment, apartmentID)
	}
	return s.store.PreviousPeriodReadings(ctx, apartmentID, period)
}

// ExportCSV writes the period's billed lines as CSV.
func (s *BillingService) ExportCSV(ctx context.Context, w io.Writer, period core.Period) error {
	rows, err := s.ExportRows(ctx, period)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, rows)
}

// ExportRows loads the period's billed lines as export rows. Callers
// that stream the result can fail before writing any output.
func (s *BillingService) ExportRows(ctx context.Context, period core.Period) ([]export.Row, error) {
	summaries, err := s.store.SummariesByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	return export.BuildRows(catalog.Apartments(), summaries, period), nil
}

// PushToSheet appends the period's billed lines to the spreadsheet.
func (s *BillingService) PushToSheet(ctx context.Context, period core.Period) (string, error) {
	if s.appender == nil {
		return "", fmt.Errorf("no spreadsheet adapter configured")
	}
	rows, err := s.ExportRows(ctx, period)
	if err != nil {
		return "", err
	}
	ref, err := s.appender.AppendRows(ctx, export.Strings(rows))
	if err != nil {
		return "", fmt.Errorf("push rows to sheet: %w", err)
	}
	return ref, nil
}
