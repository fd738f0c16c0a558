package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lehmann314159/recipes/internal/auth"
	"github.com/lehmann314159/recipes/internal/blobstore"
	"github.com/lehmann314159/recipes/internal/config"
	"github.com/lehmann314159/recipes/internal/database"
	"github.com/lehmann314159/recipes/internal/gateway"
	"github.com/lehmann314159/recipes/internal/handlers"
	"github.com/lehmann314159/recipes/internal/logging"
	"github.com/lehmann314159/recipes/internal/repository"
	"github.com/lehmann314159/recipes/internal/store"
	"github.com/lehmann314159/recipes/internal/supabase"
)

// version is set during build with -ldflags
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Recipe catalog server",
	Long:  `Serves the public recipe catalog and its admin pages, backed by sqlite or a hosted Supabase project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash to use as admin.password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "recipes version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// backend is the record store, blob store and sign-in provider of one
// deployment.
type backend struct {
	records  store.RecordStore
	blobs    store.BlobStore
	reader   store.BlobReader
	provider auth.Provider
	close    func() error
}

func openBackend(cfg config.Config) (*backend, error) {
	if cfg.Backend.Kind == config.BackendSupabase {
		client := supabase.NewClient(cfg.Backend.URL, cfg.Backend.Key, cfg.Backend.Timeout)
		return &backend{
			records:  client,
			blobs:    client.Storage(),
			provider: client.Auth(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := database.New(cfg.Backend.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	blobs, err := blobstore.NewOnDisk(filepath.Join(cfg.Backend.DataDir, "blobs"), "/images")
	if err != nil {
		db.Close()
		return nil, err
	}
	return &backend{
		records:  repository.New(db, database.Columns),
		blobs:    blobs,
		reader:   blobs,
		provider: auth.NewStatic(cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Admin.SessionTTL),
		close:    db.Close,
	}, nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return err
	}

	l, err := logging.New().Level(cfg.Log.Level).Format(cfg.Log.Format).ToPath(cfg.Log.Path).Make()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set up logging: %v\n", err)
		return err
	}
	defer l.Close()
	log := l.Logger

	b, err := openBackend(cfg)
	if err != nil {
		log.Error().Err(err).Msg("open backend")
		return err
	}
	defer b.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gw := gateway.New(b.records, b.blobs, gateway.Options{
		Bucket:  cfg.Backend.Bucket,
		Logger:  log,
		Metrics: gateway.NewMetrics(reg),
	})

	tmpl, err := handlers.ParseTemplates(gw.Images, cfg.Site)
	if err != nil {
		log.Error().Err(err).Msg("parse templates")
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		Gateway:   gw,
		Blobs:     b.reader,
		Bucket:    cfg.Backend.Bucket,
		Sessions:  auth.NewSessions(b.provider, cfg.Admin.SessionTTL, log),
		Templates: tmpl,
		Site:      cfg.Site,
		Listing:   cfg.Listing,
		Logger:    log,
		Metrics:   reg,
		StaticDir: cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return run(ctx, srv, log)
}

func run(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
