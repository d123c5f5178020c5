package roles

import (
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/assignment"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

// CataloguePort lists role definitions.
type CataloguePort interface {
	Definitions() []rbac.RoleDefinition
}

// Preparer opens the confirm step for a role.
type Preparer interface {
	Prepare(role rbac.Role) (*assignment.Confirmation, error)
}

// Service handles role catalogue queries.
type Service struct {
	catalogue CataloguePort
	workflow  Preparer
}

// NewService builds Service instance.
func NewService(catalogue CataloguePort, workflow Preparer) *Service {
	return &Service{catalogue: catalogue, workflow: workflow}
}

// ListRoles returns all catalogued roles.
func (s *Service) ListRoles() []Role {
	defs := s.catalogue.Definitions()
	out := make([]Role, 0, len(defs))
	for _, def := range defs {
		allowed := make([]rbac.Permission, 0, len(def.AllowedPermissions))
		for _, p := range rbac.AllPermissions() {
			if def.AllowedPermissions.Has(p) {
				allowed = append(allowed, p)
			}
		}
		out = append(out, Role{
			Role:               def.Role,
			Label:              def.Label,
			Description:        def.Description,
			AllowedPermissions: allowed,
			Wildcard:           def.Role.IsWildcard(),
		})
	}
	return out
}

// Confirmation returns the untouched confirm step for role.
func (s *Service) Confirmation(role rbac.Role) (ConfirmationView, error) {
	conf, err := s.workflow.Prepare(role)
	if err != nil {
		return ConfirmationView{}, err
	}
	return ConfirmationView{
		Role:         conf.Role(),
		Label:        conf.Label(),
		Options:      conf.Options(),
		Acknowledged: conf.Acknowledged(),
		CanConfirm:   conf.CanConfirm(),
	}, nil
}
