// Command seed-db loads merchants and couriers into the database from a JSON
// seed file. Seeding is idempotent: existing rows keep their accumulated
// revenue, wallet balance, and delivery counts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/feiradobairro/marketplace/internal/domain/courier"
	"github.com/feiradobairro/marketplace/internal/domain/merchant"
	"github.com/feiradobairro/marketplace/internal/repository"
)

type seedFile struct {
	Merchants []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Stall string `json:"stall"`
	} `json:"merchants"`
	Couriers []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Available bool   `json:"available"`
	} `json:"couriers"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/market.json", "path to market seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	merchants := repository.NewMerchantRepository(pool)
	for _, m := range seed.Merchants {
		if err := merchants.Upsert(ctx, &merchant.Merchant{
			ID:    m.ID,
			Name:  m.Name,
			Stall: m.Stall,
		}); err != nil {
			return errors.Wrapf(err, "upsert merchant %s", m.ID)
		}
		slog.Info("upserted merchant", slog.String("id", m.ID), slog.String("name", m.Name))
	}

	couriers := repository.NewCourierRepository(pool)
	for _, c := range seed.Couriers {
		if err := couriers.Upsert(ctx, &courier.Courier{
			ID:        c.ID,
			Name:      c.Name,
			Available: c.Available,
		}); err != nil {
			return errors.Wrapf(err, "upsert courier %s", c.ID)
		}
		slog.Info("upserted courier", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}
