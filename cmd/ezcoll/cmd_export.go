package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nhath/ezcoll/internal/config"
	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/prefs"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Write a collection to <collection>.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupCLILogging(opts.debug)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			profile, client, disconnect, err := connect(cfg, opts)
			if err != nil {
				return err
			}
			defer disconnect()

			if dir == "" {
				dir = cfg.ExportDir
			}
			path, exportErr := gateway.ExportFile(cmd.Context(), client, args[0], dir)
			recordExport(profile.Name, args[0], path, exportErr)
			if exportErr != nil {
				return exportErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "destination directory (default: export_dir from config)")
	return cmd
}

// recordExport adds the export to the activity log; failures only warn
func recordExport(profile, collection, path string, err error) {
	store, openErr := prefs.NewStore()
	if openErr != nil {
		slog.Warn("export: activity log unavailable", "err", openErr)
		return
	}
	defer store.Close()
	if recErr := store.Profile(profile).Record(prefs.NewEntry(prefs.ActionExport, collection, path, err)); recErr != nil {
		slog.Warn("export: failed to record activity", "err", recErr)
	}
}
