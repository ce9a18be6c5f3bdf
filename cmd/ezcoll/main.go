// cmd/ezcoll/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhath/ezcoll/internal/config"
	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/prefs"
	"github.com/nhath/ezcoll/internal/ui"
)

type rootOptions struct {
	profile string
	url     string
	token   string
	page    string
	debug   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ezcoll",
		Short:         "Browse the collections of a gateway from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadEnv(".env")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.profile, "profile", "p", "", "profile name from the config file")
	flags.StringVar(&opts.url, "url", "", "gateway URL, overrides the profile")
	flags.StringVar(&opts.token, "token", "", "bearer token, overrides the profile")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.page, "page", "/", "initial location, e.g. /documentation")

	cmd.AddCommand(
		newListCmd(opts),
		newExportCmd(opts),
		newProfileCmd(),
	)
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	closeLog, err := setupTUILogging(opts.debug)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	profile, client, disconnect, err := connect(cfg, opts)
	if err != nil {
		return err
	}
	defer disconnect()

	// preferences only last for this session when the database is unavailable
	var backend prefs.Backend
	if prefStore, err := prefs.NewStore(); err != nil {
		slog.Warn("preferences unavailable, keeping them in memory", "err", err)
		backend = prefs.NewMemory()
	} else {
		defer prefStore.Close()
		backend = prefStore.Profile(profile.Name)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	model := ui.NewModel(ctx, cfg, profile, client, backend, opts.page)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// connect resolves the profile and builds its gateway client. The returned
// func closes the SSH tunnel when one was opened.
func connect(cfg *config.Config, opts *rootOptions) (config.Profile, *gateway.Client, func(), error) {
	profile, err := cfg.ResolveProfile(opts.profile, opts.url, opts.token)
	if err != nil {
		return config.Profile{}, nil, nil, err
	}

	gwOpts := []gateway.Option{gateway.WithTimeout(cfg.RequestTimeout())}
	disconnect := func() {}
	if sshCfg, ok := profile.SSHConfig(); ok {
		tunnel, err := gateway.NewSSHTunnel(sshCfg)
		if err != nil {
			return config.Profile{}, nil, nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		gwOpts = append(gwOpts, gateway.WithTunnel(tunnel))
		disconnect = func() { tunnel.Close() }
	}
	return profile, gateway.NewClient(profile.URL, profile.Token, gwOpts...), disconnect, nil
}
