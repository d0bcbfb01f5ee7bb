package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"soldo/internal/domain/transaction"
	"soldo/internal/infrastructure/postgres"
	"soldo/internal/shared/config"
)

const usage = `Soldo Admin CLI - Management commands for the Soldo ledger

Usage:
  admin <command> [options]

Commands:
  pair-backfill    Link legacy transfer legs that predate pair ids
  balance-audit    Recompute account balances and report divergence

Examples:
  # Backfill transfer pairs for a specific user
  admin pair-backfill --user-id=4f8c...

  # Backfill for multiple users
  admin pair-backfill --user-id=id1,id2,id3

  # Backfill for all users
  admin pair-backfill --all

  # Run with custom worker count for higher concurrency
  admin pair-backfill --all --workers=8

  # Audit balances for a user with a timeout
  admin balance-audit --user-id=4f8c... --timeout=5m

  # Audit balances for all users
  admin balance-audit --all --workers=8
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "pair-backfill":
		runPairBackfill(os.Args[2:])
	case "balance-audit":
		runBalanceAudit(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// commandFlags holds the flags shared by both admin commands.
type commandFlags struct {
	userIDs []string
	workers int
	timeout time.Duration
}

func parseCommandFlags(name string, args []string) commandFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to process (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Process all users with accounts")
	workers := fs.Int("workers", transaction.DefaultWorkerCount, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Printf("Usage: admin %s [options]\n", name)
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Printf("  admin %s --user-id=4f8c...\n", name)
		fmt.Printf("  admin %s --all\n", name)
		fmt.Printf("  admin %s --all --workers=8 --timeout=1h\n", name)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cf := commandFlags{workers: *workers, timeout: timeout}
	if !*allUsers {
		for _, p := range strings.Split(*userIDStr, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cf.userIDs = append(cf.userIDs, p)
			}
		}
	}
	return cf
}

func runPairBackfill(args []string) {
	cf := parseCommandFlags("pair-backfill", args)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	transactionRepo := postgres.NewTransactionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	backfill := transaction.NewPairBackfillService(transactionRepo, cf.workers)

	ctx, cancel := context.WithTimeout(context.Background(), cf.timeout)
	defer cancel()

	userIDs := cf.userIDs
	if len(userIDs) == 0 {
		userIDs, err = accountRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d users with accounts", len(userIDs))
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting pair backfill for %d user(s) with %d workers", len(userIDs), cf.workers)
	startTime := time.Now()

	if len(userIDs) == 1 {
		result, err := backfill.BackfillUser(ctx, userIDs[0])
		if err != nil {
			log.Fatalf("Pair backfill failed: %v", err)
		}
		printBackfillResult(userIDs[0], result)
	} else {
		results := backfill.BackfillUsers(ctx, userIDs)
		for uid, result := range results {
			printBackfillResult(uid, result)
		}
	}

	log.Printf("Pair backfill completed in %v", time.Since(startTime))
}

func printBackfillResult(userID string, result *transaction.PairBackfillResult) {
	fmt.Printf("\n=== User %s ===\n", userID)
	fmt.Printf("  Legs checked:  %d\n", result.LegsChecked)
	fmt.Printf("  Pairs linked:  %d\n", result.PairsLinked)
	fmt.Printf("  Ambiguous:     %d\n", result.Ambiguous)
	fmt.Printf("  Unmatched:     %d\n", result.Unmatched)
	printErrors(result.Errors)
}

func runBalanceAudit(args []string) {
	cf := parseCommandFlags("balance-audit", args)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	transactionRepo := postgres.NewTransactionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	audit := transaction.NewBalanceAuditService(accountRepo, transactionRepo, cf.workers)

	ctx, cancel := context.WithTimeout(context.Background(), cf.timeout)
	defer cancel()

	userIDs := cf.userIDs
	if len(userIDs) == 0 {
		userIDs, err = accountRepo.ListUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d users with accounts", len(userIDs))
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting balance audit for %d user(s) with %d workers", len(userIDs), cf.workers)
	startTime := time.Now()

	if len(userIDs) == 1 {
		result, err := audit.AuditUser(ctx, userIDs[0])
		if err != nil {
			log.Fatalf("Balance audit failed: %v", err)
		}
		printAuditResult(userIDs[0], result)
	} else {
		results := audit.AuditUsers(ctx, userIDs)
		for uid, result := range results {
			printAuditResult(uid, result)
		}
	}

	log.Printf("Balance audit completed in %v", time.Since(startTime))
}

func printAuditResult(userID string, result *transaction.BalanceAuditResult) {
	fmt.Printf("\n=== User %s ===\n", userID)
	fmt.Printf("  Accounts checked: %d\n", result.AccountsChecked)
	fmt.Printf("  Divergences:      %d\n", len(result.Divergences))

	for _, d := range result.Divergences {
		fmt.Printf("    - %s (%s): stored=%s computed=%s delta=%s\n",
			d.AccountName, d.AccountID, d.Stored.StringFixed(2), d.Computed.StringFixed(2), d.Delta.StringFixed(2))
	}
	printErrors(result.Errors)
}

func printErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Printf("  Errors:           %d\n", len(errs))
	for i, e := range errs {
		if i >= 5 {
			fmt.Printf("    ... and %d more errors\n", len(errs)-5)
			break
		}
		fmt.Printf("    - %s\n", e)
	}
}
