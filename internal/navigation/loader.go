package navigation

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// ErrEmptyGroup is returned when a menu node declares an empty children list.
var ErrEmptyGroup = errors.New("navigation: group has no children")

//go:embed menu.yaml
var defaultMenu []byte

type menuFile struct {
	Menu []Node `yaml:"menu"`
}

// Default returns the embedded console menu.
func Default() ([]Node, error) {
	return Parse(defaultMenu)
}

// LoadFile reads a menu from YAML. An empty path yields the embedded menu.
func LoadFile(path string) ([]Node, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("navigation: read menu: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML menu and checks every leaf names a known permission
// and every group has children.
func Parse(raw []byte) ([]Node, error) {
	var file menuFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("navigation: decode menu: %w", err)
	}
	if err := validate(file.Menu, ""); err != nil {
		return nil, err
	}
	return file.Menu, nil
}

func validate(nodes []Node, parent string) error {
	for _, n := range nodes {
		if n.Name == "" {
			return fmt.Errorf("navigation: unnamed node under %q", parent)
		}
		if n.Children != nil && len(n.Children) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyGroup, n.Name)
		}
		if n.IsGroup() {
			if err := validate(n.Children, n.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := rbac.ParsePermission(string(n.Permission())); err != nil {
			return fmt.Errorf("navigation: node %q: %w", n.Name, err)
		}
	}
	return nil
}
