package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/geocoder89/eventmanager/internal/config"
	"github.com/geocoder89/eventmanager/internal/db"
	"github.com/geocoder89/eventmanager/internal/observability"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	dir, err := db.ParseDirection(*direction)
	if err != nil {
		log.Error("bad direction", "direction", *direction, "err", err)
		os.Exit(2)
	}

	switch cfg.DB.Driver {
	case config.DriverSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		bdb, err := db.OpenSQLite(ctx, cfg.DB.DSN())
		if err != nil {
			log.Error("open sqlite failed", "err", err)
			os.Exit(1)
		}
		defer bdb.Close()

		err = db.MigrateSQLite(bdb.DB, dir)
	default:
		err = db.MigratePostgres(cfg.DB.DSN(), dir)
	}

	if err != nil {
		log.Error("migration failed", "driver", cfg.DB.Driver, "direction", *direction, "err", err)
		os.Exit(1)
	}

	log.Info("migration complete", "driver", cfg.DB.Driver, "direction", *direction)
}
