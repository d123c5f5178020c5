package rbac

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultCatalogue []byte

// Catalogue is the static set of role definitions.
type Catalogue struct {
	definitions map[Role]RoleDefinition
	order       []Role
}

type catalogueFile struct {
	Roles []struct {
		Role        string   `yaml:"role"`
		Label       string   `yaml:"label"`
		Description string   `yaml:"description"`
		AllowAll    bool     `yaml:"allow_all"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
}

// DefaultCatalogue returns the embedded role catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads a catalogue from a YAML file. An empty path yields the
// embedded default.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read catalogue: %w", err)
	}
	return ParseCatalogue(raw)
}

// ParseCatalogue decodes and validates a YAML catalogue.
func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("rbac: decode catalogue: %w", err)
	}
	titler := cases.Title(language.English)
	cat := &Catalogue{definitions: make(map[Role]RoleDefinition, len(file.Roles))}
	for _, entry := range file.Roles {
		role, err := ParseRole(entry.Role)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.definitions[role]; dup {
			return nil, fmt.Errorf("rbac: duplicate role %q in catalogue", role)
		}
		allowed := NewPermissionSet()
		if entry.AllowAll {
			allowed = NewPermissionSet(AllPermissions()...)
		} else {
			allowed, err = ParsePermissionSet(entry.Permissions)
			if err != nil {
				return nil, fmt.Errorf("rbac: role %q: %w", role, err)
			}
		}
		label := entry.Label
		if label == "" {
			label = titler.String(string(role))
		}
		cat.definitions[role] = RoleDefinition{
			Role:               role,
			Label:              label,
			Description:        entry.Description,
			AllowedPermissions: allowed,
		}
		cat.order = append(cat.order, role)
	}
	return cat, nil
}

// Definition returns the definition for role.
func (c *Catalogue) Definition(role Role) (RoleDefinition, bool) {
	if c == nil {
		return RoleDefinition{}, false
	}
	def, ok := c.definitions[role]
	if !ok {
		return RoleDefinition{}, false
	}
	def.AllowedPermissions = def.AllowedPermissions.Clone()
	return def, true
}

// Definitions returns all definitions in file order.
func (c *Catalogue) Definitions() []RoleDefinition {
	if c == nil {
		return nil
	}
	out := make([]RoleDefinition, 0, len(c.order))
	for _, role := range c.order {
		def, _ := c.Definition(role)
		out = append(out, def)
	}
	return out
}

// Roles returns the catalogued roles sorted by tag.
func (c *Catalogue) Roles() []Role {
	if c == nil {
		return nil
	}
	out := append([]Role(nil), c.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
