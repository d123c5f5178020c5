package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/cmd/consolectl/cli"
)

// exitError carries a command exit code back to main.
type exitError int

func (e exitError) Error() string { return "exit" }

func run(code int) error {
	if code == cli.ExitOK {
		return nil
	}
	return exitError(code)
}

func newRootCmd() *cobra.Command {
	var jsonOutput bool
	root := &cobra.Command{
		Use:           "consolectl",
		Short:         "Operator tooling for the restaurant console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")

	token := &cobra.Command{Use: "token", Short: "Credential helpers"}
	token.AddCommand(&cobra.Command{
		Use:   "inspect <credential>",
		Short: "Decode a credential and check its expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cli.TokenInspectCommand(cli.TokenInspectOptions{
				Token:      args[0],
				JSONOutput: jsonOutput,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			}))
		},
	})

	var navOpts cli.NavPreviewOptions
	nav := &cobra.Command{Use: "nav", Short: "Navigation menu helpers"}
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Print the menu visible to a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			navOpts.JSONOutput = jsonOutput
			navOpts.Stdout = cmd.OutOrStdout()
			navOpts.Stderr = cmd.ErrOrStderr()
			return run(cli.NavPreviewCommand(navOpts))
		},
	}
	preview.Flags().StringVar(&navOpts.Role, "role", "", "role tag to preview")
	preview.Flags().StringSliceVar(&navOpts.Permissions, "perm", nil, "permissions held (defaults to the role's full allowance)")
	preview.Flags().StringVar(&navOpts.MenuPath, "menu", os.Getenv("NAV_CONFIG"), "menu YAML file")
	preview.Flags().StringVar(&navOpts.CataloguePath, "catalogue", os.Getenv("ROLES_CONFIG"), "role catalogue YAML file")
	_ = preview.MarkFlagRequired("role")
	nav.AddCommand(preview)

	routes := &cobra.Command{
		Use:   "routes",
		Short: "List guarded console routes and their permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cli.RoutesCommand(cli.RoutesOptions{
				JSONOutput: jsonOutput,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			}))
		},
	}

	root.AddCommand(token, nav, routes)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if code, ok := err.(exitError); ok {
			os.Exit(int(code))
		}
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(cli.ExitError)
	}
}
