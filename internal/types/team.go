package types

import "github.com/go-playground/validator/v10"

// Manager is a team member who receives routed customer email.
// Specialties are lowercase keywords matched against subject and body
// (e.g. "warranty", "install", "billing").
type Manager struct {
	Name        string   `json:"name" validate:"required,min=1"`
	Email       string   `json:"email" validate:"required,email"`
	Specialties []string `json:"specialties,omitempty"`
	OnCall      bool     `json:"on_call,omitempty"`
}

// Supplier is a known vendor whose mail bypasses customer triage.
// Domains are sender domains that identify the supplier. Owner names the
// manager who handles this vendor; their mail routes to that manager.
type Supplier struct {
	Name    string   `json:"name" validate:"required,min=1"`
	Domains []string `json:"domains" validate:"required,min=1,dive,hostname"`
	Owner   string   `json:"owner,omitempty"`
	Contact string   `json:"contact,omitempty"`
}

// ManagerByName returns the manager with the given name, or nil.
func (t *Team) ManagerByName(name string) *Manager {
	for i := range t.Managers {
		if t.Managers[i].Name == name {
			return &t.Managers[i]
		}
	}
	return nil
}

// Team is the full roster for one business. The taxonomy generator creates
// one label branch per member and the routing engine assigns email to them.
type Team struct {
	Managers []Manager `json:"managers"`
	Suppliers []Supplier `json:"suppliers"`
}

// OnCallManager returns the designated on-call manager, or the first
// manager when none is flagged, or nil for an empty roster.
func (t *Team) OnCallManager() *Manager {
	for i := range t.Managers {
		if t.Managers[i].OnCall {
			return &t.Managers[i]
		}
	}
	if len(t.Managers) > 0 {
		return &t.Managers[0]
	}
	return nil
}

// SupplierForDomain returns the supplier whose domain list contains the
// given sender domain, or nil.
func (t *Team) SupplierForDomain(domain string) *Supplier {
	for i := range t.Suppliers {
		for _, d := range t.Suppliers[i].Domains {
			if d == domain {
				return &t.Suppliers[i]
			}
		}
	}
	return nil
}

// Validate validates the team roster using the validator.
func (t *Team) Validate() error {
	validate := validator.New()
	for i := range t.Managers {
		if err := validate.Struct(&t.Managers[i]); err != nil {
			return err
		}
	}
	for i := range t.Suppliers {
		if err := validate.Struct(&t.Suppliers[i]); err != nil {
			return err
		}
	}
	return nil
}
