// Command syncd runs one synchronization pass for a single user. A scheduler
// or an operator invokes it per linked institution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/moneymap/backend/internal/classify"
	"github.com/moneymap/backend/internal/config"
	"github.com/moneymap/backend/internal/logger"
	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/provider/plaidclient"
	"github.com/moneymap/backend/internal/store"
	"github.com/moneymap/backend/internal/store/postgres"
	"github.com/moneymap/backend/internal/sync"
)

func main() {
	var (
		userID           = flag.String("user", "", "user id to sync (required)")
		accessToken      = flag.String("access-token", "", "provider access token (required, or ACCESS_TOKEN env)")
		itemID           = flag.String("item", "", "known provider item id (optional)")
		accountsOnly     = flag.Bool("accounts-only", false, "sync accounts only")
		transactionsOnly = flag.Bool("transactions-only", false, "sync transactions only")
	)
	flag.Parse()

	if err := run(context.Background(), *userID, *accessToken, *itemID, *accountsOnly, *transactionsOnly); err != nil {
		fmt.Fprintf(os.Stderr, "syncd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, userID, accessToken, itemID string, accountsOnly, transactionsOnly bool) error {
	if accessToken == "" {
		accessToken = os.Getenv("ACCESS_TOKEN")
	}
	if userID == "" || accessToken == "" {
		return fmt.Errorf("both -user and -access-token are required")
	}
	if accountsOnly && transactionsOnly {
		return fmt.Errorf("-accounts-only and -transactions-only are mutually exclusive")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.New(level)
	ctx = logger.WithContext(ctx, log)

	var (
		accounts     store.AccountStore
		transactions store.TransactionStore
	)
	if cfg.UseMemoryStore {
		log.Info().Msg("using in-memory store")
		accounts = store.NewMemoryAccountStore()
		transactions = store.NewMemoryTransactionStore()
	} else {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.InitSchema(ctx, pool); err != nil {
			return err
		}
		accounts = postgres.NewAccountStore(pool)
		transactions = postgres.NewTransactionStore(pool)
	}

	client, err := plaidclient.New(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	if err != nil {
		return err
	}

	orch := sync.NewOrchestrator(
		sync.NewAccountSyncer(client, accounts, log),
		sync.NewTransactionSyncer(client, accounts, transactions, classify.New(), log),
		log,
	)

	user := model.User{ID: userID}
	switch {
	case accountsOnly:
		_, err = orch.SyncAccounts(ctx, user, accessToken, itemID)
	case transactionsOnly:
		_, err = orch.SyncTransactions(ctx, user, accessToken)
	default:
		_, err = orch.SyncAll(ctx, user, accessToken, itemID)
	}
	return err
}
