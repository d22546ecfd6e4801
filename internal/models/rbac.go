package models

import (
	"fmt"
	"strings"
	"time"
)

// Access qualifiers scope a permission to self-owned vs. all resources.
const (
	AccessOwn = "own"
	AccessAny = "any"
)

// Permission is an (action, entity, access) triple, unique on the combination.
type Permission struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"not null;uniqueIndex:idx_permissions_action_entity_access" json:"action"`
	Entity      string    `gorm:"not null;uniqueIndex:idx_permissions_action_entity_access" json:"entity"`
	Access      string    `gorm:"not null;uniqueIndex:idx_permissions_action_entity_access" json:"access"`
	Description string    `gorm:"default:''" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Role is a named bundle of permissions.
type Role struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `gorm:"default:''" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionQuery is the parsed form of a permission string. An empty Access
// set means any access value matches.
type PermissionQuery struct {
	Action string   `json:"action"`
	Entity string   `json:"entity"`
	Access []string `json:"access,omitempty"`
}

// ParsePermission parses "action:entity" or "action:entity:access[,access]".
// Permission strings never travel past this boundary as raw strings.
func ParsePermission(s string) (PermissionQuery, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return PermissionQuery{}, fmt.Errorf("invalid permission %q", s)
	}
	q := PermissionQuery{Action: parts[0], Entity: parts[1]}
	if q.Action == "" || q.Entity == "" {
		return PermissionQuery{}, fmt.Errorf("invalid permission %q", s)
	}
	if len(parts) == 3 {
		for _, a := range strings.Split(parts[2], ",") {
			if a != AccessOwn && a != AccessAny {
				return PermissionQuery{}, fmt.Errorf("invalid access %q in permission %q", a, s)
			}
			q.Access = append(q.Access, a)
		}
	}
	return q, nil
}

func (q PermissionQuery) String() string {
	if len(q.Access) == 0 {
		return q.Action + ":" + q.Entity
	}
	return q.Action + ":" + q.Entity + ":" + strings.Join(q.Access, ",")
}
