// Package tenant implements the multi-tenant manager: accounts as the root
// tenant entity and users belonging to exactly one account, with password
// hashing and the reset token lifecycle.
package tenant

import (
	"time"

	"github.com/saas-foundation/saas-foundation/internal/datastore"
)

const (
	accountsTable = "accounts"
	usersTable    = "users"
)

// Entities returns the entity descriptors of the tenant module.
func Entities() []datastore.Entity {
	return []datastore.Entity{
		{
			Table: accountsTable,
			Fields: []datastore.Field{
				{Name: "name", Type: datastore.Text, Unique: true},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
		{
			Table: usersTable,
			Fields: []datastore.Field{
				{Name: "account_id", Type: datastore.Integer},
				{Name: "username", Type: datastore.Text, Unique: true},
				{Name: "password_hash", Type: datastore.Text},
				{Name: "reset_token", Type: datastore.Text, Nullable: true},
				{Name: "reset_token_created_at", Type: datastore.Timestamp, Nullable: true},
				{Name: "created_at", Type: datastore.Timestamp, Nullable: true},
			},
		},
	}
}

// Account is the root tenant entity. It owns users and subscriptions.
type Account struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// User belongs to exactly one account. PasswordHash holds the Argon2id hash
// of the password; ResetToken and ResetTokenCreatedAt are empty unless a
// password reset is pending.
type User struct {
	ID                  int64
	AccountID           int64
	Username            string
	PasswordHash        string
	ResetToken          string
	ResetTokenCreatedAt time.Time
	CreatedAt           time.Time
}

func accountFromRow(row datastore.Row) *Account {
	account := &Account{
		Name: datastore.AsString(row["name"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		account.ID = id
	}

	if createdAt, ok := datastore.ParseTime(row["created_at"]); ok {
		account.CreatedAt = createdAt
	}

	return account
}

func userFromRow(row datastore.Row) *User {
	user := &User{
		Username:     datastore.AsString(row["username"]),
		PasswordHash: datastore.AsString(row["password_hash"]),
		ResetToken:   datastore.AsString(row["reset_token"]),
	}

	if id, ok := datastore.AsInt64(row["id"]); ok {
		user.ID = id
	}

	if accountID, ok := datastore.AsInt64(row["account_id"]); ok {
		user.AccountID = accountID
	}

	if t, ok := datastore.ParseTime(row["reset_token_created_at"]); ok {
		user.ResetTokenCreatedAt = t
	}

	if t, ok := datastore.ParseTime(row["created_at"]); ok {
		user.CreatedAt = t
	}

	return user
}
