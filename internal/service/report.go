package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
)

// Reporter projects rosters for organizers. It is read-only and caches
// nothing.
type Reporter struct {
	catalog repository.EventCatalog
	regs    repository.RegistrationStore
}

// NewReporter constructs a Reporter.
func NewReporter(catalog repository.EventCatalog, regs repository.RegistrationStore) *Reporter {
	return &Reporter{catalog: catalog, regs: regs}
}

// Report returns the event with its roster in acceptance order.
func (r *Reporter) Report(ctx context.Context, eventID string) (*model.Report, error) {
	event, err := getEvent(ctx, r.catalog, eventID)
	if err != nil {
		return nil, err
	}
	return r.project(ctx, *event)
}

// ReportAll returns one report per enabled event, in catalog order.
func (r *Reporter) ReportAll(ctx context.Context) ([]model.Report, error) {
	events, err := r.catalog.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	reports := make([]model.Report, 0, len(events))
	for _, e := range events {
		rep, err := r.project(ctx, e)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}

func (r *Reporter) project(ctx context.Context, event model.Event) (*model.Report, error) {
	regs, err := r.regs.ListFor(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return &model.Report{
		Event:         event,
		Registrations: regs,
		Count:         len(regs),
		Remaining:     max(event.MaxAttendees-len(regs), 0),
	}, nil
}
