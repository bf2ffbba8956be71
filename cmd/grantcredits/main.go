// Command grantcredits tops up a user's balance from the terminal.
//
//	grantcredits -user <uuid> -amount 50 [-reason "support credit"]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adforge-server/internal/adapter/repo"
	"adforge-server/internal/infra"
	"adforge-server/internal/service"
)

func main() {
	userID := flag.String("user", "", "user id to credit")
	amount := flag.Int("amount", 0, "credits to grant")
	reason := flag.String("reason", "", "ledger description")
	flag.Parse()

	if *userID == "" || *amount <= 0 {
		fmt.Fprintln(os.Stderr, "usage: grantcredits -user <uuid> -amount <n> [-reason <text>]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("grantcredits: db connection failed")
	}
	defer pool.Close()

	store := repo.NewStore(infra.NewSQLRunner(pool, logger))
	credits := service.NewCreditService(store, logger)

	if err := credits.AdminGrant(ctx, *userID, *amount, *reason); err != nil {
		logger.Fatal().Err(err).Msg("grantcredits: grant failed")
	}

	balance, err := credits.Balance(ctx, *userID)
	if err != nil {
		logger.Fatal().Err(err).Msg("grantcredits: balance read failed")
	}
	fmt.Printf("granted %d credits to %s (balance now %d)\n", *amount, *userID, balance)
}
