package cmd

import (
	"fmt"
	"log"

	"inventory-bridge/core/adapter"
	"inventory-bridge/core/compat"
	"inventory-bridge/core/config"
	"inventory-bridge/core/database"
	"inventory-bridge/core/logger"
	"inventory-bridge/core/payload"
	"inventory-bridge/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanWorldPath string

// scanCmd runs the initial-sync pass once and exits. Useful right after
// installing the bridge on a server with existing player files.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Seed snapshots from existing player files",
	Long: `Walks the world's playerdata directory and creates a snapshot row for
every player file that has none for this server yet. Players whose file
cannot be decoded are left unsynced and can be retried on a later run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		if scanWorldPath != "" {
			cfg.Sync.WorldPath = scanWorldPath
		}

		manager := database.NewManager(cfg.Database, logg)
		manager.Initialize()
		defer manager.Close()
		if manager.State() != database.StateActive {
			return fmt.Errorf("datastore unavailable: %s", manager.LastError())
		}
		repo := database.NewRepository(manager, logg)

		codec := payload.NewCodec(compat.NewMappings(), cfg.Compatibility.MinecraftVersion,
			cfg.Compatibility.DataVersion, nil, logg)

		// No players are connected in CLI mode; everything bootstraps
		// from the save files.
		svc := sync.NewService(cfg.Sync, repo, codec, adapter.NewMemoryProvider(), nil, logg)
		report, err := svc.ScanPlayerFiles()
		if err != nil {
			return err
		}
		logg.Info("Scan complete",
			zap.Int("scanned", report.Scanned),
			zap.Int("synced", report.Synced),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanWorldPath, "world", "", "world directory to scan (defaults to sync.worldpath)")
	RootCmd.AddCommand(scanCmd)
}
