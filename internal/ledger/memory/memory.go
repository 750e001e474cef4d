// Package memory is an in-memory ledger store, used as a test double
// and as the default backend when no database is configured.
package memory

import (
	"context"
	"sync"

	"komunalka/internal/core"
	"komunalka/internal/ledger"
)

type Store struct {
	mu         sync.Mutex
	apartments []ledger.Apartment
	readings   map[string]ledger.Reading // keyed apartment|resource|period
	tariffs    []ledger.Tariff
	payments   map[string]ledger.FixedPayment // keyed apartment|period|name
}

func New(apartments []ledger.Apartment, tariffs []ledger.Tariff) *Store {
	return &Store{
		apartments: apartments,
		tariffs:    tariffs,
		readings:   make(map[string]ledger.Reading),
		payments:   make(map[string]ledger.FixedPayment),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Apartments(context.Context) ([]ledger.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Apartment, len(s.apartments))
	copy(out, s.apartments)
	return out, nil
}

func (s *Store) Apartment(_ context.Context, id string) (ledger.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apt := range s.apartments {
		if apt.ID == id {
			return apt, nil
		}
	}
	return ledger.Apartment{}, ledger.ErrApartmentNotFound
}

func (s *Store) Readings(_ context.Context, apartmentID string, period core.Period) ([]ledger.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Reading
	for _, r := range s.readings {
		if r.ApartmentID == apartmentID && r.Period == period {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) UpsertReading(_ context.Context, r ledger.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[r.ApartmentID+"|"+r.Resource+"|"+r.Period.String()] = r
	return nil
}

func (s *Store) Tariffs(_ context.Context, apartmentID string) ([]ledger.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Tariff
	for _, t := range s.tariffs {
		if t.ApartmentID == nil || *t.ApartmentID == apartmentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) FixedPayments(_ context.Context, apartmentID string, period core.Period) ([]ledger.FixedPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.FixedPayment
	for _, p := range s.payments {
		if p.ApartmentID == apartmentID && p.Period == period {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) UpsertFixedPayment(_ context.Context, p ledger.FixedPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ApartmentID+"|"+p.Period.String()+"|"+p.Name] = p
	return nil
}
