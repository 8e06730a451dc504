// Command roster prints event rosters from the configured store, or mints an
// organizer token for the HTTP report routes.
//
//	roster                   all enabled events
//	roster -event <id>       one event
//	roster -token ops@acme   print a bearer token signed with ADMIN_JWT_SECRET
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/handler"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/Shivanand-hulikatti/event-registration/internal/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	eventID := flag.String("event", "", "only print the roster of this event")
	subject := flag.String("token", "", "mint an organizer token for this subject and exit")
	ttl := flag.Duration("ttl", 24*time.Hour, "lifetime of a minted token")
	flag.Parse()

	if err := run(*eventID, *subject, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "roster:", err)
		os.Exit(1)
	}
}

func run(eventID, subject string, ttl time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if subject != "" {
		token, err := handler.IssueAdminToken(cfg.AdminJWTSecret, subject, ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	ctx := context.Background()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	reporter := service.NewReporter(store, store)

	var reports []model.Report
	if eventID != "" {
		rep, err := reporter.Report(ctx, eventID)
		if err != nil {
			return err
		}
		reports = []model.Report{*rep}
	} else {
		reports, err = reporter.ReportAll(ctx)
		if err != nil {
			return err
		}
	}

	printReports(os.Stdout, reports)
	return nil
}

func printReports(w io.Writer, reports []model.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}

	for _, rep := range reports {
		fmt.Fprintf(w, "%s (%s) on %s: %d/%d registered, %d remaining\n",
			rep.Event.Title, rep.Event.ID, rep.Event.EventDate.Format(time.RFC1123),
			rep.Count, rep.Event.MaxAttendees, rep.Remaining)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Full name", "Email", "Locale", "Submitted at"})
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk(lo.Map(rep.Registrations, func(reg model.Registration, i int) []string {
			return []string{
				strconv.Itoa(i + 1),
				reg.FullName,
				reg.Email,
				lo.Ternary(reg.Locale == "", "-", reg.Locale),
				reg.SubmittedAt.Format(time.RFC3339),
			}
		}))
		table.Render()
		fmt.Fprintln(w)
	}

	registered := lo.SumBy(reports, func(rep model.Report) int { return rep.Count })
	capacity := lo.SumBy(reports, func(rep model.Report) int { return rep.Event.MaxAttendees })
	fmt.Fprintf(w, "%d events, %d registrations, %d seats\n", len(reports), registered, capacity)
}
