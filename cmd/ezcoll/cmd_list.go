package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhath/ezcoll/internal/config"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Print the collection names of the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupCLILogging(opts.debug)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			_, client, disconnect, err := connect(cfg, opts)
			if err != nil {
				return err
			}
			defer disconnect()

			names, err := client.CollectionNames(cmd.Context())
			if err != nil {
				return err
			}
			return writeNames(cmd.OutOrStdout(), names, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeNames(w io.Writer, names []string, format string) error {
	if names == nil {
		names = []string{}
	}
	switch format {
	case "", "text":
		for _, n := range names {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(names)
	}
	return fmt.Errorf("unknown output format %q", format)
}
