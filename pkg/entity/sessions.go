package entity

import (
	"context"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/query"
)

// Session is a row of the Sessions table. LastActive is a unix timestamp;
// UserAgent holds the MD5 digest of the browser user agent.
type Session struct {
	Hash       string
	UserData   string
	UserAgent  string
	IPv4       string
	ID         int64
	UserID     int64
	LastActive int64
}

// SessionUser is a session joined with the account that owns it.
type SessionUser struct {
	Session
	User User
}

// Sessions is the Sessions table.
type Sessions struct {
	Table
}

// NewSessions binds the Sessions table to gw.
func NewSessions(gw *db.Gateway) Sessions {
	return Sessions{Table: NewTable(gw, "Sessions")}
}

// ByID loads one session.
func (s Sessions) ByID(ctx context.Context, id int64) (Session, error) {
	row, err := s.Select().Where("id", id).Limit(0, 1).ExecuteFetch(ctx)
	if err != nil {
		return Session{}, err
	}
	return sessionFromRow(row), nil
}

// WithUser loads a session together with its user in one joined query.
func (s Sessions) WithUser(ctx context.Context, id int64) (SessionUser, error) {
	row, err := s.Select(
		"Sessions.id",
		"Sessions.Users_id",
		"Sessions.hash",
		"Sessions.last_active",
		"Sessions.user_data",
		"Sessions.user_agent",
		"Sessions.ipv4",
		"JUsers_id.username",
		"JUsers_id.Permissions_id",
		"JUsers_id.email",
		"JUsers_id.banned",
		"JUsers_id.ban_reason",
		"JUsers_id.last_online",
	).
		Join("Users_id").
		Where("Sessions.id", id).
		Limit(0, 1).
		ExecuteFetch(ctx)
	if err != nil {
		return SessionUser{}, err
	}

	sess := sessionFromRow(row)
	user := userFromRow(row)
	user.ID = sess.UserID
	return SessionUser{Session: sess, User: user}, nil
}

// Create inserts a session and returns its id.
func (s Sessions) Create(ctx context.Context, sess Session) (int64, error) {
	return s.Insert(query.Values{
		{Column: "Users_id", Value: sess.UserID},
		{Column: "hash", Value: sess.Hash},
		{Column: "last_active", Value: sess.LastActive},
		{Column: "user_data", Value: sess.UserData},
		{Column: "user_agent", Value: sess.UserAgent},
		{Column: "ipv4", Value: sess.IPv4},
	}).ExecuteInsertID(ctx)
}

// TouchDeferred queues the last-active refresh for the end-of-request transaction.
func (s Sessions) TouchDeferred(id int64, ipv4 string, lastActive int64) error {
	return s.Update(query.Values{
		{Column: "ipv4", Value: ipv4},
		{Column: "last_active", Value: lastActive},
	}).Where("id", id).ExecuteTransaction()
}

// RehashDeferred queues a secret rotation for the end-of-request transaction.
func (s Sessions) RehashDeferred(id int64, hash, ipv4 string, lastActive int64) error {
	return s.Update(query.Values{
		{Column: "ipv4", Value: ipv4},
		{Column: "last_active", Value: lastActive},
		{Column: "hash", Value: hash},
	}).Where("id", id).ExecuteTransaction()
}

// DeleteDeferred queues the row removal for the end-of-request transaction.
func (s Sessions) DeleteDeferred(id int64) error {
	return s.Delete().Where("id", id).ExecuteTransaction()
}

// DeleteIdle removes sessions last active at or before cutoff.
func (s Sessions) DeleteIdle(ctx context.Context, cutoff int64) (int64, error) {
	return s.Delete().Where("last_active", cutoff, "<=").Execute(ctx)
}

func sessionFromRow(row db.Row) Session {
	return Session{
		ID:         row.Int64("id"),
		UserID:     row.Int64("Users_id"),
		Hash:       row.String("hash"),
		LastActive: row.Int64("last_active"),
		UserData:   row.String("user_data"),
		UserAgent:  row.String("user_agent"),
		IPv4:       row.String("ipv4"),
	}
}
