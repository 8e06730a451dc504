package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/stretchr/testify/require"
)

func TestPrintReports(t *testing.T) {
	req := require.New(t)
	reports := []model.Report{
		{
			Event: model.Event{ID: "E1", Title: "Go Night", MaxAttendees: 3,
				EventDate: time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC)},
			Registrations: []model.Registration{
				{FullName: "Alice", Email: "alice@example.com", Locale: "fr", SubmittedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
				{FullName: "Bob", Email: "bob@example.com", SubmittedAt: time.Date(2026, 10, 1, 9, 5, 0, 0, time.UTC)},
			},
			Count:     2,
			Remaining: 1,
		},
		{
			Event:         model.Event{ID: "E2", Title: "Rust Night", MaxAttendees: 5},
			Registrations: []model.Registration{},
			Remaining:     5,
		},
	}

	var buf bytes.Buffer
	printReports(&buf, reports)
	out := buf.String()

	req.Contains(out, "Go Night (E1)")
	req.Contains(out, "2/3 registered, 1 remaining")
	req.Contains(out, "alice@example.com")
	req.Contains(out, "bob@example.com")
	req.Contains(out, "Rust Night (E2)")
	req.Contains(out, "2 events, 2 registrations, 8 seats")
}

func TestPrintReports_Empty(t *testing.T) {
	var buf bytes.Buffer
	printReports(&buf, nil)
	require.Equal(t, "no events\n", buf.String())
}
