package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/mocks"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventService_CreateEvent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newStore(t)
	svc := service.NewEventService(store, store, fixedClock, discard)

	when := time.Date(2026, 12, 1, 19, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	event, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Title:        "  Go Meetup  ",
		EventDate:    when,
		MaxAttendees: 40,
	})
	req.NoError(err)
	req.NotEmpty(event.ID)
	req.Equal("Go Meetup", event.Title)
	req.True(event.Enabled)
	req.Equal(time.UTC, event.EventDate.Location())
	req.True(when.Equal(event.EventDate))
	req.Equal(fixedTime, event.CreatedAt)

	got, err := svc.GetEvent(ctx, event.ID)
	req.NoError(err)
	req.Equal(event.Title, got.Title)

	events, err := svc.ListEvents(ctx)
	req.NoError(err)
	req.Len(events, 1)
}

func TestEventService_CreateEventValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    model.CreateEventRequest
		field string
	}{
		{"missing title", model.CreateEventRequest{EventDate: time.Now(), MaxAttendees: 1}, "title"},
		{"missing date", model.CreateEventRequest{Title: "x", MaxAttendees: 1}, "event_date"},
		{"zero capacity", model.CreateEventRequest{Title: "x", EventDate: time.Now()}, "max_attendees"},
		{"negative capacity", model.CreateEventRequest{Title: "x", EventDate: time.Now(), MaxAttendees: -3}, "max_attendees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			writer := mocks.NewMockEventWriter(ctrl)
			svc := service.NewEventService(mocks.NewMockEventCatalog(ctrl), writer, fixedClock, discard)

			_, err := svc.CreateEvent(context.Background(), tt.in)
			req.ErrorIs(err, apperr.ErrValidation)
			var appErr *apperr.Error
			req.ErrorAs(err, &appErr)
			req.Equal(tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockEventCatalog(ctrl)
	svc := service.NewEventService(catalog, mocks.NewMockEventWriter(ctrl), fixedClock, discard)

	_, err := svc.GetEvent(context.Background(), "   ")
	req.ErrorIs(err, apperr.ErrUnknownEvent, "blank ids never reach the catalog")

	boom := errors.New("pool closed")
	catalog.EXPECT().GetEvent(gomock.Any(), "E1").Return(nil, boom)
	_, err = svc.GetEvent(context.Background(), "E1")
	req.ErrorIs(err, boom)
	req.NotErrorIs(err, apperr.ErrUnknownEvent)
}
