package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ebrukaya/therapy-ledger/internal/config"
	"github.com/ebrukaya/therapy-ledger/internal/repository/sqlite"
	"github.com/ebrukaya/therapy-ledger/internal/service/analytics"
	"github.com/ebrukaya/therapy-ledger/internal/service/ledger"
	"github.com/ebrukaya/therapy-ledger/internal/service/payments"
	"github.com/ebrukaya/therapy-ledger/pkg/logger"
)

const usage = `therapyledger - session bookkeeping for a single-therapist practice

Usage:
  therapyledger <command> [flags]

Commands:
  add        add one session
  bulk-add   add several sessions at once (rows as "patient|date|fee[|status]")
  list       list sessions, optionally filtered
  set        update fields of one session in place
  rm         delete one session
  summary    monthly and overall totals
  analytics  patient frequency, income series, status distribution
  payments   overdue and upcoming payments
  export     write a backup file (json, csv or xlsx)
  import     replace the ledger from a backup file (json or csv)
`

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
	})

	// Initialize database
	db, err := sqlite.NewDB(cfg.Storage.Path)
	if err != nil {
		log.Fatal(err, "failed to open ledger database")
	}
	defer db.Close()

	// Initialize repository and services
	repo := sqlite.NewLedgerRepository(db)
	ledgerSvc := ledger.NewService(repo, log)
	analyticsSvc := analytics.NewService(ledgerSvc)
	paymentsSvc := payments.NewService(ledgerSvc)

	cli := &app{
		cfg:       cfg,
		log:       log,
		ledger:    ledgerSvc,
		analytics: analyticsSvc,
		payments:  paymentsSvc,
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	var cmdErr error
	switch os.Args[1] {
	case "add":
		cmdErr = cli.runAdd(ctx, os.Args[2:])
	case "bulk-add":
		cmdErr = cli.runBulkAdd(ctx, os.Args[2:])
	case "list":
		cmdErr = cli.runList(ctx, os.Args[2:])
	case "set":
		cmdErr = cli.runSet(ctx, os.Args[2:])
	case "rm":
		cmdErr = cli.runDelete(ctx, os.Args[2:])
	case "summary":
		cmdErr = cli.runSummary(ctx)
	case "analytics":
		cmdErr = cli.runAnalytics(ctx)
	case "payments":
		cmdErr = cli.runPayments(ctx)
	case "export":
		cmdErr = cli.runExport(ctx, os.Args[2:])
	case "import":
		cmdErr = cli.runImport(ctx, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", cmdErr)
		os.Exit(1)
	}
}
