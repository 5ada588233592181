package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/compat"
	"inventory-bridge/core/config"
	"inventory-bridge/core/database"
	"inventory-bridge/core/loader"
	"inventory-bridge/core/logger"
	"inventory-bridge/core/middleware/auth"
	"inventory-bridge/core/middleware/rayid"
	"inventory-bridge/core/payload"
	"inventory-bridge/core/storage"

	"inventory-bridge/feature/archive"
	"inventory-bridge/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory bridge server",
	Long:  `Connects to the shared datastore and starts the HTTP admin server.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)
		logg = logg.With(zap.String("server", cfg.Sync.ServerID))

		// 3. Connect to the shared datastore. A failure here is absorbed:
		// the process starts in standby and an operator reconnects later.
		manager := database.NewManager(cfg.Database, logg)
		manager.Initialize()
		defer manager.Close()
		repo := database.NewRepository(manager, logg)

		// 4. Build the compatibility mapping table, layering persisted
		// overrides on top of the static entries when the store is up.
		mappings := compat.NewMappings()
		if overrides, err := repo.VersionOverrides(); err != nil {
			logg.Warn("Could not load version mapping overrides", zap.Error(err))
		} else {
			for _, o := range overrides {
				mappings.Put(o.ItemID, o.MappedID)
			}
			if len(overrides) > 0 {
				logg.Info("Loaded version mapping overrides", zap.Int("count", len(overrides)))
			}
		}

		codec := payload.NewCodec(mappings, cfg.Compatibility.MinecraftVersion,
			cfg.Compatibility.DataVersion, nil, logg)

		// 5. Optional snapshot archive
		var archiveFeature *archive.Feature
		var archiver sync.Archiver
		if cfg.Archive.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archiveFeature = archive.NewFeature(cfg.Archive, store, cfg.Storage.Bucket, logg)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := archiveFeature.Service().EnsureBucket(ctx); err != nil {
				logg.Warn("Archive bucket check failed, archiving stays best-effort", zap.Error(err))
			}
			cancel()
			archiver = archiveFeature.Service()
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 7. Register Features
		players := adapter.NewMemoryProvider()
		mgr := loader.NewManager(logg)
		mgr.Register(sync.NewFeature(cfg.Sync, repo, manager, codec, players, archiver, logg))
		if archiveFeature != nil {
			mgr.Register(archiveFeature)
		}

		// Middleware Registration
		// RayID first so every subsequent log line can be correlated.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth protects the whole admin surface.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Reload re-reads configuration from disk and reinitializes the
		// datastore connection with the fresh settings. Changes to other
		// sections still need a restart.
		app.Post("/sync/reload", func(c *fiber.Ctx) error {
			fresh, err := config.LoadConfig(".")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "reload configuration: " + err.Error(),
				})
			}
			if !manager.Reconfigure(fresh.Database) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"datastore":  manager.State().String(),
					"last_error": manager.LastError(),
				})
			}
			logger.WithRayID(logg, c).Info("Configuration reloaded, datastore reinitialized")
			return c.JSON(fiber.Map{"datastore": manager.State().String()})
		})

		// 8. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("datastore", manager.State().String()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
