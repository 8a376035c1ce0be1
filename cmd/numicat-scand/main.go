package main

import (
	"context"
	"log/slog"
	"time"

	"numicat-backend/lib/configutil"
	configsqlite "numicat-backend/lib/configutil/sqlite"
	"numicat-backend/lib/fetch"
	"numicat-backend/lib/serviceutil"
	"numicat-backend/lib/telemetry"
	"numicat-backend/services/catalog"
	"numicat-backend/services/catalog/db"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
)

// ScanTarget is one auction category scanned on every scan tick.
type ScanTarget struct {
	Site     string `json:"site"`
	Auction  int    `json:"auction"`
	Category string `json:"category"`
}

type Config struct {
	Database  configsqlite.Struct `json:"database"`
	CacheDir  string              `json:"cache_dir"`
	UserAgent string              `json:"user_agent"`

	// cron specs, see https://pkg.go.dev/github.com/robfig/cron/v3
	ScanSchedule  string `json:"scan_schedule"`
	RetrySchedule string `json:"retry_schedule"`

	Scans []ScanTarget `json:"scans"`
}

func scanAll(ctx context.Context, svc catalog.Service, targets []ScanTarget) {
	for _, target := range targets {
		if ctx.Err() != nil {
			return
		}

		site, ok := svc.FindSite(target.Site)
		if !ok {
			slog.Error("unknown site in scan target", "site", target.Site)
			continue
		}

		report, err := svc.ScanAuction(ctx, site, target.Auction, target.Category)
		if err != nil {
			slog.Error("scan failed",
				"site", target.Site,
				"auction", target.Auction,
				"err", err)
			continue
		}
		slog.Info("scan finished",
			"site", target.Site,
			"auction", target.Auction,
			"imported", report.Imported,
			"pending", report.Pending,
			"skipped", report.Skipped,
			"failed", report.Failed)
	}
}

func retryPending(ctx context.Context, svc catalog.Service) {
	report, err := svc.RetryPending(ctx)
	if err != nil {
		slog.Error("pending retry failed", "err", err)
		return
	}
	slog.Info("pending retry finished",
		"imported", report.Imported,
		"pending", report.Pending,
		"failed", report.Failed)
}

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "numicat-scand")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	slog.Info("opening database...")
	sqlite, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	defer sqlite.Close()

	client := fetch.NewClient(fetch.Options{UserAgent: config.UserAgent})
	if config.CacheDir != "" {
		cache, err := badger.Open(badger.DefaultOptions(config.CacheDir))
		if err != nil {
			serviceutil.Fatal("failed to open page cache", err)
		}
		defer cache.Close()
		client.SetCache(cache, time.Hour)
	}

	svc := catalog.NewService(client, sqlite)

	cronner := cron.New()
	if config.ScanSchedule != "" {
		_, err = cronner.AddFunc(config.ScanSchedule, func() {
			scanAll(ctx, svc, config.Scans)
		})
		if err != nil {
			serviceutil.Fatal("bad scan schedule", err)
		}
	}
	if config.RetrySchedule != "" {
		_, err = cronner.AddFunc(config.RetrySchedule, func() {
			retryPending(ctx, svc)
		})
		if err != nil {
			serviceutil.Fatal("bad retry schedule", err)
		}
	}

	slog.Info("starting scan scheduler...",
		"targets", len(config.Scans),
		"scan_schedule", config.ScanSchedule,
		"retry_schedule", config.RetrySchedule)
	cronner.Start()

	<-ctx.Done()
	slog.Info("shutting down...")
	<-cronner.Stop().Done()
}
