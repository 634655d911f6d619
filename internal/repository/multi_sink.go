package repository

import (
	"context"
	"errors"
	"strings"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
)

// MultiSink persists a table to every sink in order. Locations of successful
// writes are joined with commas; failures are joined into one error.
type MultiSink struct {
	sinks []domrepo.TableSink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...domrepo.TableSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Persist(ctx context.Context, t *models.MergedTable) (string, error) {
	locs := make([]string, 0, len(m.sinks))
	var errs []error
	for _, s := range m.sinks {
		loc, err := s.Persist(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locs = append(locs, loc)
	}
	return strings.Join(locs, ","), errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// MultiPublisher announces a report to every publisher. With no publishers it does nothing.
type MultiPublisher struct {
	pubs []domrepo.OutcomePublisher
}

// NewMultiPublisher combines publishers.
func NewMultiPublisher(pubs ...domrepo.OutcomePublisher) *MultiPublisher {
	return &MultiPublisher{pubs: pubs}
}

func (m *MultiPublisher) Publish(ctx context.Context, r models.SymbolReport) error {
	var errs []error
	for _, p := range m.pubs {
		errs = append(errs, p.Publish(ctx, r))
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.pubs {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// Len is the number of combined publishers.
func (m *MultiPublisher) Len() int { return len(m.pubs) }
