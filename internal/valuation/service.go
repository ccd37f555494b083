// Package valuation runs the ARV pipeline: fetch comps, normalize, rank, estimate.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/provider"
	"github.com/evcraddock/arv/internal/report"
)

// ErrNoStore is returned by Save when no history store is configured.
var ErrNoStore = errors.New("no valuation store configured")

// Store persists finished valuations.
type Store interface {
	Insert(v *comps.Valuation) (*report.Report, error)
}

// Service provides valuation business logic.
type Service struct {
	fetcher    provider.Fetcher
	normalizer *comps.Normalizer
	opts       comps.Options
	store      Store
}

// NewService creates a valuation service. store may be nil.
func NewService(fetcher provider.Fetcher, opts comps.Options, store Store) *Service {
	return &Service{
		fetcher:    fetcher,
		normalizer: comps.NewNormalizer(),
		opts:       opts,
		store:      store,
	}
}

// WithNormalizer replaces the normalizer, e.g. to add provider schemas.
func (s *Service) WithNormalizer(n *comps.Normalizer) *Service {
	s.normalizer = n
	return s
}

// Options returns the search options the service runs with.
func (s *Service) Options() comps.Options {
	return s.opts
}

// Value estimates the ARV of subject. Only invalid input is an error;
// missing comps or prices are reported through the returned Valuation.
func (s *Service) Value(ctx context.Context, subject comps.Subject) (*comps.Valuation, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	bounds, err := s.opts.Bounds(subject)
	if err != nil {
		return nil, err
	}

	p := s.fetcher.Provider()
	payload := s.fetcher.Fetch(ctx, subject, bounds)
	records := s.normalizer.Normalize(payload, p)

	v := comps.Appraise(subject, bounds, p, records, s.opts.Limit)

	slog.Debug("valuation complete",
		"address", subject.Address,
		"provider", string(p),
		"comps", len(v.Comps),
		"status", string(v.Status()),
		"has_arv", v.HasARV(),
	)

	return v, nil
}

// Save stores v in the history store.
func (s *Service) Save(v *comps.Valuation) (*report.Report, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	rep, err := s.store.Insert(v)
	if err != nil {
		return nil, fmt.Errorf("saving valuation: %w", err)
	}
	return rep, nil
}
