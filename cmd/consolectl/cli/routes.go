package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// RoutesOptions defines the flags for routes.
type RoutesOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RoutesCommand prints the guarded route table.
func RoutesCommand(opts RoutesOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	table := rbac.RouteTable()
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(table); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "routes: encode json: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
	tw := tabwriter.NewWriter(opts.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROUTE\tPERMISSION")
	for _, entry := range table {
		_, _ = fmt.Fprintf(tw, "/%s\t%s\n", entry.Route, entry.Permission)
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "routes: %v\n", err)
		return ExitError
	}
	return ExitOK
}
