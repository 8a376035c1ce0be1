package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"numicat-backend/lib/configutil"
	configsqlite "numicat-backend/lib/configutil/sqlite"
	"numicat-backend/lib/fetch"
	"numicat-backend/lib/serviceutil"
	"numicat-backend/services/catalog"
	"numicat-backend/services/catalog/db"

	"github.com/dgraph-io/badger/v4"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	Database configsqlite.Struct `json:"database"`
	// directory for the fetch page cache, empty disables caching
	CacheDir  string `json:"cache_dir"`
	UserAgent string `json:"user_agent"`
	// dump raw http exchanges here, for debugging site parsers
	DebugDir string `json:"debug_dir"`
}

var rootCmd = &cobra.Command{
	Use:   "numicat-cli",
	Short: "numicat-cli imports auction lot results into a coin catalog database.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService wires up the catalog service from config.json5. The
// returned cleanup closes the database and the page cache.
func openService() (catalog.Service, func()) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}

	client := fetch.NewClient(fetch.Options{
		UserAgent: cfg.UserAgent,
		DebugDir:  cfg.DebugDir,
	})

	var cache *badger.DB
	if cfg.CacheDir != "" {
		cache, err = badger.Open(badger.DefaultOptions(cfg.CacheDir))
		if err != nil {
			serviceutil.Fatal("failed to open page cache", err)
		}
		client.SetCache(cache, time.Hour)
	}

	cleanup := func() {
		database.Close()
		if cache != nil {
			cache.Close()
		}
	}
	return catalog.NewService(client, database), cleanup
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
