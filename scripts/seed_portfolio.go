package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/adapters/persistence"
	"github.com/khoahotran/portfolio-hub/internal/config"
	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/auth"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

const sampleCount = 4

// Seeds the default profile and sample cards into an empty backend, and prints a bcrypt
// hash for ADMIN_PASSWORD so it can be copied into ADMIN_PASSWORD_HASH.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewZapLogger(cfg.App.Env)
	defer log.Sync()

	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatal("cannot hash password", err)
		}
		fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	}

	ctx := context.Background()

	var gw portfolio.Gateway
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := persistence.NewRedisClient(cfg, log)
		if err != nil {
			log.Fatal("cannot connect Redis", err)
		}
		defer client.Close()
		gw = persistence.NewRedisGateway(client, cfg.Redis.Prefix, log)
	default:
		pool, err := persistence.NewPostgresPool(cfg, log)
		if err != nil {
			log.Fatal("cannot connect DB", err)
		}
		defer pool.Close()
		gw = persistence.NewPostgresGateway(pool, log)
	}

	_, err = gw.FetchProfile(ctx)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		p := portfolio.DefaultProfile()
		id, err := gw.UpsertProfile(ctx, &p)
		if err != nil {
			log.Fatal("cannot seed profile", err)
		}
		log.Info("Seeded default profile", zap.String("profile_id", id))
	case err != nil:
		log.Fatal("cannot read profile", err)
	default:
		log.Info("Profile already present, skipping")
	}

	items, err := gw.FetchItems(ctx)
	if err != nil {
		log.Fatal("cannot read portfolio items", err)
	}
	if len(items) > 0 {
		log.Info("Portfolio items already present, skipping", zap.Int("count", len(items)))
		return
	}

	for _, kind := range []portfolio.Kind{portfolio.KindVideo, portfolio.KindDesign} {
		label := "Video"
		if kind == portfolio.KindDesign {
			label = "Design"
		}
		for i := range sampleCount {
			fields := portfolio.ItemFields{Title: fmt.Sprintf("%s Sample %d", label, i+1), SortOrder: i}
			if _, err := gw.InsertItem(ctx, kind, fields); err != nil {
				log.Fatal("cannot seed portfolio item", err, zap.String("title", fields.Title))
			}
		}
	}
	log.Info("Seeded sample portfolio items", zap.Int("count", 2*sampleCount))
}
