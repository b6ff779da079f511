package entity

import (
	"context"
	"time"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/query"
)

// User is a row of the Users table.
type User struct {
	Username       string
	Password       string
	Email          string
	BanReason      string
	ID             int64
	PermissionsID  int64
	DateRegistered int64
	LastOnline     int64
	Banned         bool
}

// Users is the Users table.
type Users struct {
	Table
}

// NewUsers binds the Users table to gw.
func NewUsers(gw *db.Gateway) Users {
	return Users{Table: NewTable(gw, "Users")}
}

// ByID loads one user.
func (u Users) ByID(ctx context.Context, id int64) (User, error) {
	row, err := u.Select().Where("id", id).Limit(0, 1).ExecuteFetch(ctx)
	if err != nil {
		return User{}, err
	}
	return userFromRow(row), nil
}

// ByUsername loads one user by exact username.
func (u Users) ByUsername(ctx context.Context, username string) (User, error) {
	row, err := u.Select().Where("username", username).Limit(0, 1).ExecuteFetch(ctx)
	if err != nil {
		return User{}, err
	}
	return userFromRow(row), nil
}

// Create inserts a user and returns its id. A zero DateRegistered is set to now.
func (u Users) Create(ctx context.Context, user User) (int64, error) {
	if user.DateRegistered == 0 {
		user.DateRegistered = time.Now().Unix()
	}
	return u.Insert(query.Values{
		{Column: "username", Value: user.Username},
		{Column: "Permissions_id", Value: user.PermissionsID},
		{Column: "password", Value: user.Password},
		{Column: "email", Value: user.Email},
		{Column: "date_registered", Value: user.DateRegistered},
		{Column: "banned", Value: boolInt(user.Banned)},
		{Column: "ban_reason", Value: user.BanReason},
	}).ExecuteInsertID(ctx)
}

// Ban flags the account. Active sessions are refused on their next request.
func (u Users) Ban(ctx context.Context, id int64, reason string) error {
	_, err := u.Update(query.Values{
		{Column: "banned", Value: 1},
		{Column: "ban_reason", Value: reason},
	}).Where("id", id).Execute(ctx)
	return err
}

func userFromRow(row db.Row) User {
	return User{
		ID:             row.Int64("id"),
		Username:       row.String("username"),
		PermissionsID:  row.Int64("Permissions_id"),
		Password:       row.String("password"),
		Email:          row.String("email"),
		DateRegistered: row.Int64("date_registered"),
		Banned:         row.Bool("banned"),
		BanReason:      row.String("ban_reason"),
		LastOnline:     row.Int64("last_online"),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
