package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/codec"
	"github.com/ebrukaya/therapy-ledger/internal/config"
	"github.com/ebrukaya/therapy-ledger/internal/model"
	"github.com/ebrukaya/therapy-ledger/internal/service/analytics"
	"github.com/ebrukaya/therapy-ledger/internal/service/ledger"
	"github.com/ebrukaya/therapy-ledger/internal/service/payments"
	apperrors "github.com/ebrukaya/therapy-ledger/pkg/errors"
	"github.com/ebrukaya/therapy-ledger/pkg/logger"
)

type app struct {
	cfg       *config.Config
	log       *logger.Logger
	ledger    *ledger.Service
	analytics *analytics.Service
	payments  *payments.Service
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	patient := fs.String("patient", "", "patient name (required)")
	date := fs.String("date", "", "session date, e.g. 2024-05-01T15:00 (required)")
	fee := fs.Float64("fee", 0, "session fee")
	status := fs.String("status", string(model.PaymentStatusWaiting), "payment status: Paid, Waiting or Cancelled")
	due := fs.String("due", "", "payment due date (defaults to session date + 7 days)")
	fs.Parse(args)

	sessionDate, err := codec.ParseTimestamp(*date)
	if err != nil && *date != "" {
		return err
	}

	req := model.CreateSessionRequest{
		PatientName:   *patient,
		SessionDate:   sessionDate,
		SessionFee:    *fee,
		PaymentStatus: model.PaymentStatus(*status),
	}
	if *due != "" {
		dueDate, err := codec.ParseTimestamp(*due)
		if err != nil {
			return err
		}
		req.PaymentDueDate = &dueDate
	}

	session, err := a.ledger.Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("added session %s (%s, commission %.2f)\n", session.ID, session.PatientName, session.Commission)
	return nil
}

func (a *app) runBulkAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk-add", flag.ExitOnError)
	fs.Parse(args)

	rows := fs.Args()
	if len(rows) == 0 {
		return apperrors.Validation(`bulk-add needs at least one row, each as "patient|date|fee[|status]"`, nil)
	}

	inputs := make([]model.BulkSessionInput, 0, len(rows))
	for i, row := range rows {
		parts := strings.Split(row, "|")
		if len(parts) < 3 || len(parts) > 4 {
			return apperrors.Validation(fmt.Sprintf("row %d must be \"patient|date|fee[|status]\"", i+1), nil)
		}

		sessionDate, err := codec.ParseTimestamp(parts[1])
		if err != nil {
			return apperrors.Validation(fmt.Sprintf("row %d has an invalid date", i+1), err)
		}
		fee, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return apperrors.Validation(fmt.Sprintf("row %d has an invalid fee", i+1), err)
		}

		input := model.BulkSessionInput{
			PatientName: parts[0],
			SessionDate: sessionDate,
			SessionFee:  fee,
		}
		if len(parts) == 4 {
			input.PaymentStatus = model.PaymentStatus(parts[3])
		}
		inputs = append(inputs, input)
	}

	created, err := a.ledger.BulkCreate(ctx, inputs)
	if err != nil {
		return err
	}
	fmt.Printf("added %d sessions\n", len(created))
	return nil
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("q", "", "patient name search")
	status := fs.String("status", model.StatusFilterAll, "payment status filter")
	from := fs.String("from", "", "range start date")
	to := fs.String("to", "", "range end date")
	fs.Parse(args)

	filters := model.SessionFilters{Query: *query, Status: *status}
	if err := parseRange(*from, *to, &filters.Start, &filters.End); err != nil {
		return err
	}

	sessions, err := a.ledger.ListFiltered(ctx, filters)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		if filters.Active() {
			fmt.Println("no sessions match the current filters")
		} else {
			fmt.Println("no sessions recorded yet")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPATIENT\tFEE\tCOMMISSION\tSTATUS\tDUE\tPAID")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%s\n",
			shortID(s.ID),
			s.SessionDate.Local().Format("2006-01-02 15:04"),
			s.PatientName,
			s.SessionFee,
			s.Commission,
			s.PaymentStatus,
			formatDay(s.PaymentDueDate),
			formatDay(s.PaymentDate),
		)
	}
	return w.Flush()
}

func (a *app) runSet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	id := fs.String("id", "", "session id (required)")
	patient := fs.String("patient", "", "new patient name")
	date := fs.String("date", "", "new session date")
	fee := fs.Float64("fee", 0, "new session fee")
	status := fs.String("status", "", "new payment status")
	due := fs.String("due", "", "new payment due date")
	fs.Parse(args)

	var patch model.SessionPatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "patient":
			patch.PatientName = patient
		case "date":
			t, err := codec.ParseTimestamp(*date)
			if err != nil {
				parseErr = err
				return
			}
			patch.SessionDate = &t
		case "fee":
			patch.SessionFee = fee
		case "status":
			s := model.PaymentStatus(*status)
			patch.PaymentStatus = &s
		case "due":
			t, err := codec.ParseTimestamp(*due)
			if err != nil {
				parseErr = err
				return
			}
			patch.PaymentDueDate = &t
		}
	})
	if parseErr != nil {
		return parseErr
	}

	session, err := a.ledger.Patch(ctx, *id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("updated session %s\n", session.ID)
	return nil
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "session id (required)")
	fs.Parse(args)

	if err := a.ledger.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted session %s\n", *id)
	return nil
}

func (a *app) runSummary(ctx context.Context) error {
	months, err := a.analytics.MonthlySummaries(ctx)
	if err != nil {
		return err
	}
	overall, err := a.analytics.Overall(ctx)
	if err != nil {
		return err
	}

	if len(months) == 0 {
		fmt.Println("no sessions recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tSESSIONS\tINCOME\tOUTSTANDING\tPAID COMMISSION\tTOTAL COMMISSION")
	for _, m := range months {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			m.Label, m.SessionsCount, m.TotalIncome, m.OutstandingBalance, m.PaidCommission, m.TotalCommission)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nall time: income %.2f, outstanding %.2f\n", overall.TotalIncome, overall.OutstandingBalance)
	return nil
}

func (a *app) runAnalytics(ctx context.Context) error {
	distribution, err := a.analytics.StatusDistribution(ctx)
	if err != nil {
		return err
	}
	frequency, err := a.analytics.PatientFrequency(ctx)
	if err != nil {
		return err
	}
	series, err := a.analytics.MonthlyIncomeSeries(ctx)
	if err != nil {
		return err
	}

	fmt.Println("payment status distribution:")
	for _, d := range distribution {
		fmt.Printf("  %-10s %d\n", d.Status, d.Count)
	}

	fmt.Println("\nsessions per patient (top 10, cancelled excluded):")
	for _, p := range frequency {
		fmt.Printf("  %-20s %d\n", p.PatientName, p.Sessions)
	}

	fmt.Println("\nmonthly income (paid sessions):")
	for _, m := range series {
		fmt.Printf("  %-8s %.2f\n", m.Label, m.Income)
	}
	return nil
}

func (a *app) runPayments(ctx context.Context) error {
	overview, err := a.payments.Overview(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("outstanding balance: %.2f\n", overview.OutstandingBalance)

	fmt.Printf("\noverdue (%d):\n", len(overview.Overdue))
	printDueList(overview.Overdue)

	fmt.Printf("\nupcoming within 7 days (%d):\n", len(overview.Upcoming))
	printDueList(overview.Upcoming)
	return nil
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "json", "backup format: json, csv or xlsx")
	from := fs.String("from", "", "range start date")
	to := fs.String("to", "", "range end date")
	out := fs.String("out", a.cfg.Export.Dir, "output directory")
	fs.Parse(args)

	var opts codec.ExportOptions
	if err := parseRange(*from, *to, &opts.Start, &opts.End); err != nil {
		return err
	}

	sessions, err := a.ledger.List(ctx)
	if err != nil {
		return err
	}

	var data []byte
	target := codec.Format(*format)
	switch target {
	case codec.FormatJSON:
		data, err = codec.ExportJSON(sessions, opts)
	case codec.FormatCSV:
		data, err = codec.ExportCSV(sessions, opts)
	case codec.FormatXLSX:
		data, err = codec.ExportXLSX(sessions, opts)
	default:
		return apperrors.Validation(fmt.Sprintf("unknown export format %q", *format), nil)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(*out, codec.Filename(target, time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Persistence("failed to write backup file", err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func (a *app) runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "backup file to import (required)")
	yes := fs.Bool("yes", false, "replace the ledger without asking")
	fs.Parse(args)

	format, err := codec.DetectFormat(*file)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return apperrors.Persistence("failed to read backup file", err)
	}

	var (
		sessions []model.Session
		warnings []codec.RowWarning
	)
	switch format {
	case codec.FormatJSON:
		sessions, err = codec.ParseJSON(data)
	case codec.FormatCSV:
		sessions, warnings, err = codec.ParseCSV(data)
	}
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.log.Warn(w.String())
	}

	confirm := func(current, incoming int) bool {
		if *yes {
			return true
		}
		fmt.Printf("replace %d existing sessions with %d imported ones? [y/N] ", current, incoming)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}

	imported, err := a.ledger.ImportLedger(ctx, sessions, confirm)
	if err != nil {
		return err
	}
	if !imported {
		fmt.Println("import cancelled, ledger unchanged")
		return nil
	}
	fmt.Printf("imported %d sessions\n", len(sessions))
	return nil
}

func printDueList(sessions []model.Session) {
	if len(sessions) == 0 {
		fmt.Println("  none")
		return
	}
	for _, s := range sessions {
		fmt.Printf("  %s  due %s  %.2f  %s\n",
			s.PatientName, formatDay(s.PaymentDueDate), s.SessionFee, shortID(s.ID))
	}
}

func parseRange(from, to string, start, end **time.Time) error {
	if from != "" {
		t, err := codec.ParseTimestamp(from)
		if err != nil {
			return err
		}
		*start = &t
	}
	if to != "" {
		t, err := codec.ParseTimestamp(to)
		if err != nil {
			return err
		}
		*end = &t
	}
	return nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
