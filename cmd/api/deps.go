package main

import (
	"log"

	"soldo/internal/domain/account"
	"soldo/internal/domain/debt"
	"soldo/internal/domain/saving"
	"soldo/internal/domain/transaction"
	"soldo/internal/infrastructure/postgres"
	"soldo/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Domain services
	AccountService *account.Service
	Ledger         *transaction.Ledger
	SavingService  *saving.Service
	DebtService    *debt.Service

	// Maintenance services
	PairBackfill *transaction.PairBackfillService
	BalanceAudit *transaction.BalanceAuditService

	// Repositories
	AccountRepo     *postgres.AccountRepository
	TransactionRepo *postgres.TransactionRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	savingRepo := postgres.NewSavingRepository(db)
	debtRepo := postgres.NewDebtRepository(db)

	// Initialize domain services
	accountService := account.NewService(accountRepo)
	ledger := transaction.NewLedger(transactionRepo, accountRepo)
	savingService := saving.NewService(savingRepo)
	debtService := debt.NewService(debtRepo)

	// Initialize maintenance services
	pairBackfill := transaction.NewPairBackfillService(transactionRepo, cfg.Admin.WorkerCount)
	balanceAudit := transaction.NewBalanceAuditService(accountRepo, transactionRepo, cfg.Admin.WorkerCount)

	return &Dependencies{
		DB:              db,
		AccountService:  accountService,
		Ledger:          ledger,
		SavingService:   savingService,
		DebtService:     debtService,
		PairBackfill:    pairBackfill,
		BalanceAudit:    balanceAudit,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
