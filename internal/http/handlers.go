package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"komunalka/internal/catalog"
	"komunalka/internal/core"
	"komunalka/internal/export"
	"komunalka/internal/ledger"
)

type apartmentResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	Services []serviceResponse `json:"services"`
}

type serviceResponse struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
	FixedAmount float64 `json:"fixedAmount,omitempty"`
	WinterOnly  bool    `json:"winterOnly,omitempty"`
}

func (s *Server) handleApartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	apartments := catalog.Apartments()
	out := make([]apartmentResponse, 0, len(apartments))
	for _, apt := range apartments {
		resp := apartmentResponse{
			ID:      apt.ID,
			Name:    apt.Name,
			Address: apt.Address,
		}
		for _, svc := range apt.Services {
			resp.Services = append(resp.Services, serviceResponse{
				Name:        svc.Name,
				Kind:        string(svc.Kind),
				Unit:        svc.Unit,
				UnitPrice:   svc.UnitPrice,
				FixedAmount: svc.FixedAmount,
				WinterOnly:  svc.WinterOnly,
			})
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listReadings(w, r)
	case http.MethodPost:
		s.upsertReading(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listReadings(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := queryApartmentID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing apartment_id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := s.ledgerStore.Readings(r.Context(), apartmentID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load readings", "apartment_id", apartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	if readings == nil {
		readings = []ledger.Reading{}
	}
	respondJSON(w, http.StatusOK, readings)
}

func (s *Server) upsertReading(w http.ResponseWriter, r *http.Request) {
	var in ledger.Reading
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.ApartmentID) == "" || strings.TrimSpace(in.Resource) == "" {
		respondError(w, http.StatusBadRequest, "apartmentId and resource are required")
		return
	}
	period, err := core.ParsePeriod(in.Period.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Period = period

	if _, err := s.ledgerStore.Apartment(r.Context(), in.ApartmentID); err != nil {
		if errors.Is(err, ledger.ErrApartmentNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("unknown apartment %s", in.ApartmentID))
			return
		}
		slog.ErrorContext(r.Context(), "failed to check apartment", "apartment_id", in.ApartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save reading")
		return
	}

	if err := s.ledgerStore.UpsertReading(r.Context(), in); err != nil {
		slog.ErrorContext(r.Context(), "failed to save reading",
			"apartment_id", in.ApartmentID,
			"resource", in.Resource,
			"error", err)
		respondError(w, http.StatusInternalServerError, "failed to save reading")
		return
	}
	s.calcCache.Delete(calcCacheKey(in.ApartmentID, in.Period))
	respondJSON(w, http.StatusCreated, in)
}

func (s *Server) handleFixedPayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFixedPayments(w, r)
	case http.MethodPost:
		s.upsertFixedPayment(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listFixedPayments(w http.ResponseWriter, r *http.Request) {
	apartmentID, ok := queryApartmentID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing apartment_id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := s.ledgerStore.FixedPayments(r.Context(), apartmentID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load fixed payments", "apartment_id", apartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load fixed payments")
		return
	}
	if payments == nil {
		payments = []ledger.FixedPayment{}
	}
	respondJSON(w, http.StatusOK, payments)
}

func (s *Server) upsertFixedPayment(w http.ResponseWriter, r *http.Request) {
	var in ledger.FixedPayment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.ApartmentID) == "" || strings.TrimSpace(in.Name) == "" {
		respondError(w, http.StatusBadRequest, "apartmentId and name are required")
		return
	}
	if in.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	period, err := core.ParsePeriod(in.Period.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Period = period

	if err := s.ledgerStore.UpsertFixedPayment(r.Context(), in); err != nil {
		slog.ErrorContext(r.Context(), "failed to save fixed payment",
			"apartment_id", in.ApartmentID,
			"name", in.Name,
			"error", err)
		respondError(w, http.StatusInternalServerError, "failed to save fixed payment")
		return
	}
	s.calcCache.Delete(calcCacheKey(in.ApartmentID, in.Period))
	respondJSON(w, http.StatusCreated, in)
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	apartmentID, ok := queryApartmentID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing apartment_id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := calcCacheKey(apartmentID, period)
	if cached, ok := s.calcCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.calc.Calculate(r.Context(), apartmentID, period)
	if err != nil {
		if errors.Is(err, ledger.ErrApartmentNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("unknown apartment %s", apartmentID))
			return
		}
		slog.ErrorContext(r.Context(), "ledger calculation failed", "apartment_id", apartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "calculation failed")
		return
	}

	resp := calcResponse(result)
	s.calcCache.Set(cacheKey, resp)
	respondJSON(w, http.StatusOK, resp)
}

func calcCacheKey(apartmentID string, period core.Period) string {
	return apartmentID + "|" + period.String()
}

type billRequest struct {
	ApartmentID string                      `json:"apartmentId"`
	Period      string                      `json:"period"`
	Readings    map[string]readingInputBody `json:"readings"`
}

type readingInputBody struct {
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
}

type billResponse struct {
	Result     calcResult `json:"result"`
	DeliveryID string     `json:"deliveryId,omitempty"`
}

type calcResult struct {
	ApartmentID   string         `json:"apartmentId"`
	ApartmentName string         `json:"apartmentName"`
	Period        string         `json:"period"`
	Lines         []calcLineItem `json:"services"`
	TotalAmount   float64        `json:"totalAmount"`
	CalculatedAt  string         `json:"calculationDate"`
}

type calcLineItem struct {
	Name            string   `json:"name"`
	PreviousReading *float64 `json:"previousReading,omitempty"`
	CurrentReading  *float64 `json:"currentReading,omitempty"`
	Consumption     *float64 `json:"consumption,omitempty"`
	UnitPrice       *float64 `json:"unitPrice,omitempty"`
	Amount          float64  `json:"amount"`
	Unit            string   `json:"unit,omitempty"`
}

func calcResponse(result core.CalculationResult) calcResult {
	out := calcResult{
		ApartmentID:   result.ApartmentID,
		ApartmentName: result.ApartmentName,
		Period:        result.Period.String(),
		TotalAmount:   result.TotalAmount,
		CalculatedAt:  result.CalculatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Lines:         make([]calcLineItem, 0, len(result.Lines)),
	}
	for _, line := range result.Lines {
		out.Lines = append(out.Lines, calcLineItem{
			Name:            line.Name,
			PreviousReading: line.PreviousReading,
			CurrentReading:  line.CurrentReading,
			Consumption:     line.Consumption,
			UnitPrice:       line.UnitPrice,
			Amount:          line.Amount,
			Unit:            line.Unit,
		})
	}
	return out
}

// handleBills runs a catalog calculation from user-entered readings,
// persists it, and queues the chat notification.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ApartmentID) == "" {
		respondError(w, http.StatusBadRequest, "apartmentId is required")
		return
	}
	period, err := core.ParsePeriod(req.Period)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	inputs := make(map[string]core.ReadingInput, len(req.Readings))
	for name, in := range req.Readings {
		inputs[name] = core.ReadingInput{Previous: in.Previous, Current: in.Current}
	}

	bill, err := s.billing.CalculateBill(r.Context(), req.ApartmentID, inputs, period)
	switch {
	case errors.Is(err, core.ErrUnknownApartment):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, core.ErrIncompleteInput):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "bill calculation failed", "apartment_id", req.ApartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "bill calculation failed")
		return
	}

	respondJSON(w, http.StatusCreated, billResponse{
		Result:     calcResponse(bill.Result),
		DeliveryID: bill.DeliveryID,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		summaries, err := s.store.Summaries(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to load history", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		if summaries == nil {
			summaries = []core.PeriodSummary{}
		}
		respondJSON(w, http.StatusOK, summaries)

	case http.MethodDelete:
		if err := s.store.Clear(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "failed to clear history", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to clear history")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBaseline returns the previous period's readings so the client
// can prefill the entry form.
func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	apartmentID, ok := queryApartmentID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing apartment_id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	baseline, err := s.billing.Baseline(r.Context(), apartmentID, period)
	if err != nil {
		if errors.Is(err, core.ErrUnknownApartment) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "failed to load baseline", "apartment_id", apartmentID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load baseline")
		return
	}
	respondJSON(w, http.StatusOK, baseline)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.store.Statistics(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to compute statistics", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleExport streams the period's billed lines as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Load the rows before touching headers so a store failure can
	// still surface as a JSON error instead of an empty 200.
	rows, err := s.billing.ExportRows(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "csv export failed", "period", period.String(), "error", err)
		respondError(w, http.StatusInternalServerError, "csv export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bills-%s.csv"`, period))
	if err := export.WriteCSV(w, rows); err != nil {
		slog.ErrorContext(r.Context(), "csv export failed", "period", period.String(), "error", err)
	}
}

func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := s.billing.PushToSheet(r.Context(), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "sheet export failed", "period", period.String(), "error", err)
		respondError(w, http.StatusInternalServerError, "sheet export failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"range": ref})
}
