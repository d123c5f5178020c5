package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/navigation"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// NavPreviewOptions defines the flags for nav preview.
type NavPreviewOptions struct {
	MenuPath      string
	CataloguePath string
	Role          string
	// Permissions overrides the role's full allowance when non-empty.
	Permissions []string
	JSONOutput  bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// NavPreviewCommand prints the menu an actor with the given role and
// permissions would see.
func NavPreviewCommand(opts NavPreviewOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	identity, err := previewIdentity(opts)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "nav preview: %v\n", err)
		return ExitError
	}
	menu, err := navigation.LoadFile(opts.MenuPath)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "nav preview: %v\n", err)
		return ExitError
	}
	visible := navigation.Filter(menu, identity)
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(map[string]any{"menu": visible}); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "nav preview: encode json: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
	if len(visible) == 0 {
		_, _ = fmt.Fprintln(opts.Stdout, "(no visible entries)")
		return ExitOK
	}
	renderTree(opts.Stdout, visible, 0)
	return ExitOK
}

func previewIdentity(opts NavPreviewOptions) (rbac.Identity, error) {
	role, err := rbac.ParseRole(strings.TrimSpace(opts.Role))
	if err != nil {
		return rbac.Identity{}, err
	}
	identity := rbac.Identity{UserID: "preview", Role: role}
	if len(opts.Permissions) > 0 {
		identity.Permissions, err = rbac.ParsePermissionSet(opts.Permissions)
		return identity, err
	}
	catalogue, err := rbac.LoadCatalogue(opts.CataloguePath)
	if err != nil {
		return rbac.Identity{}, err
	}
	def, ok := catalogue.Definition(role)
	if !ok {
		return rbac.Identity{}, fmt.Errorf("%w: %s", rbac.ErrUnknownRole, role)
	}
	identity.Permissions = def.AllowedPermissions
	return identity, nil
}

func renderTree(w io.Writer, nodes []navigation.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsGroup() {
			_, _ = fmt.Fprintf(w, "%s%s/\n", indent, n.Name)
			renderTree(w, n.Children, depth+1)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s%s\t%s\n", indent, n.Name, n.Path)
	}
}
