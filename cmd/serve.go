package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Declyn50s/Traine-Savates/pkg/admin"
	"github.com/Declyn50s/Traine-Savates/pkg/assets"
	"github.com/Declyn50s/Traine-Savates/pkg/assets/gcs"
	"github.com/Declyn50s/Traine-Savates/pkg/assets/localfs"
	"github.com/Declyn50s/Traine-Savates/pkg/cache"
	"github.com/Declyn50s/Traine-Savates/pkg/config"
	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/geocode"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
	"github.com/Declyn50s/Traine-Savates/pkg/scheduler"
	"github.com/Declyn50s/Traine-Savates/pkg/session"
	"github.com/Declyn50s/Traine-Savates/pkg/web"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the public site and the back office",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// assetStore picks the upload backend. The returned handler is nil unless
// files are served by this process.
func assetStore(ctx context.Context, cfg config.AssetConfig) (assets.Store, http.Handler, func() error, error) {
	switch cfg.Driver {
	case "gcs":
		s, err := gcs.New(ctx,
			gcs.WithBucketPrefix(cfg.BucketPrefix),
			gcs.WithCredentialsFile(cfg.CredentialsFile),
			gcs.WithPublicBaseURL(cfg.PublicBaseURL),
		)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, s.Close, nil
	default:
		s, err := localfs.New(cfg.Dir, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s.Handler(), func() error { return nil }, nil
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger.Info("Starting %s (store %s at %s, assets %s)", programName, cfg.Store.Driver, cfg.Store.Path, cfg.Assets.Driver)

	db, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close content store: %v", err)
		}
	}()

	files, filesHandler, closeFiles, err := assetStore(ctx, cfg.Assets)
	if err != nil {
		return fmt.Errorf("failed to set up asset store: %w", err)
	}
	defer func() { _ = closeFiles() }()

	var adminOpts []admin.Option
	if cfg.Geocoder.Enabled {
		var geoOpts []geocode.Option
		if cfg.Geocoder.CachePath != "" {
			geoCache, err := cache.Open(cfg.Geocoder.CachePath)
			if err != nil {
				return err
			}
			defer geoCache.Close()
			geoOpts = append(geoOpts, geocode.WithCache(geoCache))
		}
		geocoder := geocode.New(cfg.Geocoder.Endpoint, cfg.Geocoder.UserAgent, nil, geoOpts...)
		adminOpts = append(adminOpts, admin.WithGeocoder(geocoder))
		logger.Info("Geocoding enabled via %s (cache: %+v)", cfg.Geocoder.Endpoint, geocoder.CacheStatistics())
	}

	sessions, err := session.New(cfg.Admin)
	if err != nil {
		return err
	}

	var webOpts []web.Option
	if filesHandler != nil {
		webOpts = append(webOpts, web.WithAssets(filesHandler))
	}
	site, err := web.New(content.NewService(db, files), admin.NewService(db, files, adminOpts...), sessions, webOpts...)
	if err != nil {
		return fmt.Errorf("failed to build site: %w", err)
	}

	if cfg.Backup.Enabled {
		backups, err := scheduler.New(cfg.Backup, db)
		if err != nil {
			return err
		}
		backups.Start()
		logger.Info("Backups scheduled at %q into %s (keep %d)", cfg.Backup.CronSpec, cfg.Backup.Dir, cfg.Backup.Keep)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			backups.Stop(stopCtx)
		}()
	}

	metrics.Init()
	statsMux := http.NewServeMux()
	statsMux.HandleFunc(metrics.StatsPath, metrics.StatsHandler)
	statsMux.Handle(metrics.DebugVarsPath, expvar.Handler())

	servers := []*http.Server{
		{Addr: cfg.HTTPAddr, Handler: site.Handler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: cfg.StatsAddr, Handler: statsMux, ReadHeaderTimeout: 10 * time.Second},
	}
	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errc:
		logger.Error("%v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("Failed to stop server on %s: %v", srv.Addr, serr)
		}
	}
	return err
}
