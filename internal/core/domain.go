package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Meter bills a consumption delta between two whole-unit readings.
	Meter ServiceKind = "meter"
	// LumpSum is a meter-kind service whose current value is entered
	// directly as a money amount (no consumption delta).
	LumpSum ServiceKind = "lumpsum"
	// Fixed bills a constant amount every period.
	Fixed ServiceKind = "fixed"
	// Seasonal is a fixed service active only in winter months.
	Seasonal ServiceKind = "seasonal"
)

type (
	ServiceKind string

	// Service is a catalog entry, immutable per apartment.
	Service struct {
		Name        string
		Kind        ServiceKind
		Unit        string
		UnitPrice   float64 // meter services only
		FixedAmount float64 // fixed/seasonal services only
		WinterOnly  bool
	}

	Apartment struct {
		ID       string
		Name     string
		Address  string
		Services []Service
	}

	// ReadingInput is the ephemeral per-service form state for one
	// billing attempt. LumpSum services use Current as the amount.
	ReadingInput struct {
		Previous float64
		Current  float64
	}

	// LineItem is one billed service inside a CalculationResult.
	// Reading-related fields are nil for non-meter services.
	LineItem struct {
		Name            string
		PreviousReading *float64
		CurrentReading  *float64
		Consumption     *float64
		UnitPrice       *float64
		Amount          float64
		Unit            string
	}

	CalculationResult struct {
		ApartmentID   string
		ApartmentName string
		Period        Period
		Lines         []LineItem
		TotalAmount   float64
		CalculatedAt  time.Time
	}
)

var (
	ErrEmptyName        = errors.New("empty service name")
	ErrUnknownKind      = errors.New("unknown service kind")
	ErrEmptyApartmentID = errors.New("empty apartment id")
	ErrUnknownApartment = errors.New("unknown apartment")
	ErrIncompleteInput  = errors.New("incomplete meter readings")
)

func (k ServiceKind) Valid() bool {
	switch k {
	case Meter, LumpSum, Fixed, Seasonal:
		return true
	}
	return false
}

// IsMetered reports whether the service requires a reading input
// before an apartment can be calculated.
func (s Service) IsMetered() bool {
	return s.Kind == Meter || s.Kind == LumpSum
}

func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Kind.Valid() {
		return ErrUnknownKind
	}
	return nil
}

func (a Apartment) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyApartmentID
	}
	seen := make(map[string]struct{}, len(a.Services))
	for _, svc := range a.Services {
		if err := svc.Validate(); err != nil {
			return err
		}
		if _, dup := seen[svc.Name]; dup {
			return errors.New("duplicate service name: " + svc.Name)
		}
		seen[svc.Name] = struct{}{}
	}
	return nil
}

// Service returns the named catalog entry, if present.
func (a Apartment) Service(name string) (Service, bool) {
	for _, svc := range a.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}
