package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhath/ezcoll/internal/config"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage gateway profiles",
	}
	cmd.AddCommand(newProfileListCmd(), newProfileAddCmd(), newProfileDeleteCmd())
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range cfg.Profiles {
				mark := " "
				if p.Name == cfg.DefaultProfile {
					mark = "*"
				}
				extra := ""
				if p.SSHHost != "" {
					extra = "via ssh " + p.SSHHost
				}
				fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, p.Name, p.URL, extra)
			}
			return tw.Flush()
		},
	}
}

func newProfileAddCmd() *cobra.Command {
	var (
		token       string
		watch       bool
		makeDefault bool
		ssh         config.Profile
	)

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Save a gateway profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			p, err := config.ParseProfileURL(args[0], args[1])
			if err != nil {
				return err
			}
			if token != "" {
				p.Token = token
			}
			p.Watch = watch
			p.SSHHost, p.SSHPort, p.SSHUser = ssh.SSHHost, ssh.SSHPort, ssh.SSHUser
			p.SSHPassword, p.SSHKeyPath = ssh.SSHPassword, ssh.SSHKeyPath

			if err := cfg.AddProfile(p); err != nil {
				return err
			}
			if makeDefault || cfg.DefaultProfile == "" {
				cfg.DefaultProfile = p.Name
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", p.Name)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&token, "token", "", "bearer token")
	f.BoolVar(&watch, "watch", false, "subscribe to change events")
	f.BoolVar(&makeDefault, "default", false, "make this the default profile")
	f.StringVar(&ssh.SSHHost, "ssh-host", "", "reach the gateway through this SSH host")
	f.IntVar(&ssh.SSHPort, "ssh-port", 22, "SSH port")
	f.StringVar(&ssh.SSHUser, "ssh-user", "", "SSH user")
	f.StringVar(&ssh.SSHPassword, "ssh-password", "", "SSH password or key passphrase")
	f.StringVar(&ssh.SSHKeyPath, "ssh-key", "", "SSH private key path")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.DeleteProfile(args[0]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", args[0])
			return nil
		},
	}
}
