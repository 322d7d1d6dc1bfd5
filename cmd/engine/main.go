package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/export"
	"jobscrape-engine/internal/fetch"
	"jobscrape-engine/internal/scrape"
	"jobscrape-engine/internal/secrets"
	"jobscrape-engine/internal/store"
)

func main() {
	configDir := flag.String("configs", "configs", "directory of site config YAML files")
	dataDir := flag.String("data", ".", "directory for the jobs database")
	exportPath := flag.String("export", "", "write admitted records to this file after the run")
	exportFormat := flag.String("export-format", "json", "export format: json or csv")
	timeout := flag.Duration("timeout", 30*time.Minute, "deadline for the whole batch")
	setKey := flag.String("set-render-key", "", "store the rendering API key in the OS keychain and exit")
	deleteKey := flag.Bool("delete-render-key", false, "remove the rendering API key from the OS keychain and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	// .env is optional; real deployments use the keychain or the environment
	_ = godotenv.Load()

	if *setKey != "" {
		if err := secrets.SetRenderAPIKey(*setKey); err != nil {
			log.Fatal("failed to store key", "err", err)
		}
		log.Info("rendering API key stored in keychain")
		return
	}
	if *deleteKey {
		if err := secrets.DeleteRenderAPIKey(); err != nil {
			log.Fatal("failed to delete key", "err", err)
		}
		log.Info("rendering API key removed from keychain")
		return
	}

	sites, err := config.LoadDir(*configDir)
	if err != nil {
		log.Fatal("config load failed", "dir", *configDir, "err", err)
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatal("data dir", "err", err)
	}

	// one engine process per database; sqlite does not like two writers
	lock := flock.New(filepath.Join(*dataDir, "jobscrape.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal("lock failed", "err", err)
	}
	if !locked {
		log.Fatal("another engine run holds the data dir lock", "dir", *dataDir)
	}
	defer lock.Unlock()

	st, err := store.Open(filepath.Join(*dataDir, "jobs.db"))
	if err != nil {
		log.Fatal("store open failed", "err", err)
	}
	defer st.Close()

	runner := &scrape.Runner{
		Sink:    st,
		Limiter: fetch.NewHostLimiter(1, 2),
	}
	if anyUsesProxy(sites) {
		key, err := secrets.RenderAPIKey()
		if err != nil {
			log.Fatal("a site sets use_proxy", "err", err)
		}
		runner.RenderAPIKey = key
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := runner.RunBatch(ctx, sites)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		log.Fatal("report encode failed", "err", err)
	}

	if *exportPath != "" {
		if err := writeExport(ctx, st, *exportPath, *exportFormat); err != nil {
			log.Fatal("export failed", "path", *exportPath, "err", err)
		}
		log.Info("records exported", "path", *exportPath, "format", *exportFormat)
	}

	if rep.FailedSites() > 0 {
		os.Exit(1)
	}
}

func anyUsesProxy(sites []config.Site) bool {
	for _, s := range sites {
		if s.Options.UseProxy {
			return true
		}
	}
	return false
}

func writeExport(ctx context.Context, st *store.Store, path, format string) error {
	records, err := st.List(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "csv":
		return export.CSV(f, records)
	default:
		return export.JSON(f, records)
	}
}
