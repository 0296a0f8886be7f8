package model

import "github.com/google/uuid"

// Nucleo is an organizational unit within a tenant (kitchen, front
// desk, ...). Shifts are always owned by exactly one nucleo.
type Nucleo struct {
	BaseModel
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"nome" db:"nome"`
	Description string    `json:"descrizione,omitempty" db:"descrizione"`
	MinMembers  int       `json:"numero_minimo_membri" db:"numero_minimo_membri"`
	MaxMembers  *int      `json:"numero_massimo_membri,omitempty" db:"numero_massimo_membri"`
	IsActive    bool      `json:"is_active" db:"is_active"`
}

// RequiredHeadcount returns the baseline headcount before criticality
// scaling. A nucleo with no configured minimum still needs one person.
func (n *Nucleo) RequiredHeadcount() int {
	if n.MinMembers < 1 {
		return 1
	}
	return n.MinMembers
}
