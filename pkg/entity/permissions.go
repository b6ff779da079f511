package entity

import (
	"context"
	"errors"

	"github.com/dmitrymomot/mvc/pkg/db"
)

// Permission flag columns of the Permissions table.
const (
	CanRegister     = "can_register"
	CanLogin        = "can_login"
	CanEditUsers    = "can_edit_users"
	CanEditSettings = "can_edit_settings"
	CanManageImages = "can_manage_images"
)

// PermissionFlags lists every flag column.
var PermissionFlags = []string{CanRegister, CanLogin, CanEditUsers, CanEditSettings, CanManageImages}

// GuestPermissionID is the group used for anonymous visitors.
const GuestPermissionID int64 = 3

// PermissionSet is a resolved permission group: the group's own flags laid
// over its base group's flags.
type PermissionSet struct {
	Flags  map[string]bool
	Name   string
	ID     int64
	BaseID int64
}

// Has reports whether flag is granted. Unknown flags are denied.
func (p PermissionSet) Has(flag string) bool {
	return p.Flags[flag]
}

// Permissions is the Permissions table.
type Permissions struct {
	Table
}

// NewPermissions binds the Permissions table to gw.
func NewPermissions(gw *db.Gateway) Permissions {
	return Permissions{Table: NewTable(gw, "Permissions")}
}

// PermissionSet resolves group id. When the group names a base group, the
// base row supplies every flag and each non-NULL column of the group row
// overrides it.
func (p Permissions) PermissionSet(ctx context.Context, id int64) (PermissionSet, error) {
	row, err := p.Select().Where("id", id).Limit(0, 1).ExecuteFetch(ctx)
	if errors.Is(err, db.ErrNoRows) {
		return PermissionSet{}, errors.Join(ErrPermissionSetNotFound, err)
	}
	if err != nil {
		return PermissionSet{}, err
	}

	set := PermissionSet{
		ID:    row.Int64("id"),
		Name:  row.String("name"),
		Flags: make(map[string]bool, len(PermissionFlags)),
	}

	if base := row.NullInt64("base_permissions_id"); base.Valid {
		set.BaseID = base.Int64
		baseRow, err := p.Select().Where("id", base.Int64).Limit(0, 1).ExecuteFetch(ctx)
		if errors.Is(err, db.ErrNoRows) {
			return PermissionSet{}, errors.Join(ErrPermissionSetNotFound, err)
		}
		if err != nil {
			return PermissionSet{}, err
		}
		for _, flag := range PermissionFlags {
			set.Flags[flag] = baseRow.Bool(flag)
		}
	}

	for _, flag := range PermissionFlags {
		if !row.IsNull(flag) {
			set.Flags[flag] = row.Bool(flag)
		}
	}
	return set, nil
}
