package tenant

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/saas-foundation/saas-foundation/internal/authz"
	"github.com/saas-foundation/saas-foundation/internal/datastore"
	"github.com/saas-foundation/saas-foundation/internal/uniuri"
)

// DefaultResetTokenExpiry is the window within which a reset token is valid
// unless the caller overrides it.
const DefaultResetTokenExpiry = 60 * time.Minute

// Manager provides account and user operations on top of the datastore.
type Manager struct {
	accounts *datastore.DAO
	users    *datastore.DAO
}

// NewManager registers the tenant entities with the datastore and, when an
// authorization manager is given, the module permission catalog.
func NewManager(ds *datastore.Manager, az *authz.Manager) (*Manager, error) {
	if err := ds.Register(Entities()...); err != nil {
		return nil, err
	}

	accounts, err := ds.DAO(accountsTable)
	if err != nil {
		return nil, err
	}

	users, err := ds.DAO(usersTable)
	if err != nil {
		return nil, err
	}

	if az != nil {
		az.RegisterPermissions(ModulePermissions)
	}

	return &Manager{accounts: accounts, users: users}, nil
}

// HashPassword hashes a plaintext password using the Argon2id algorithm
// with the default parameters.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hash, nil
}

// VerifyPassword verifies a plaintext password against a stored hash.
// The comparison is constant time.
func VerifyPassword(password, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		log.Error().Err(err).Msg("failed to verify password")
		return false
	}

	return match
}

// CreateAccount creates a new account with a unique name.
func (m *Manager) CreateAccount(name string) (*Account, error) {
	_, err := m.accounts.FindOneByColumn("name", name)
	if err == nil {
		return nil, ErrAccountNameTaken
	}

	if !errors.Is(err, datastore.ErrRowNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	id, err := m.accounts.Insert(datastore.Row{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Int64("account_id", id).Str("name", name).Msg("created account")

	return m.AccountByID(id)
}

// AccountByID retrieves an account by identifier.
func (m *Manager) AccountByID(id int64) (*Account, error) {
	row, err := m.accounts.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrAccountNotFound
	}

	if err != nil {
		return nil, err
	}

	return accountFromRow(row), nil
}

// AccountByName retrieves an account by its unique name.
func (m *Manager) AccountByName(name string) (*Account, error) {
	row, err := m.accounts.FindOneByColumn("name", name)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrAccountNotFound
	}

	if err != nil {
		return nil, err
	}

	return accountFromRow(row), nil
}

// CreateUser creates a user under an existing account. The account must
// exist and the username must be unique.
func (m *Manager) CreateUser(accountID int64, username, password string) (*User, error) {
	if _, err := m.accounts.GetByID(accountID); err != nil {
		if errors.Is(err, datastore.ErrRowNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, err
	}

	_, err := m.users.FindOneByColumn("username", username)
	if err == nil {
		return nil, ErrUsernameTaken
	}

	if !errors.Is(err, datastore.ErrRowNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := m.users.Insert(datastore.Row{
		"account_id":    accountID,
		"username":      username,
		"password_hash": hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64("user_id", id).
		Int64("account_id", accountID).
		Str("username", username).
		Msg("created user")

	return m.UserByID(id)
}

// UserByID retrieves a user by identifier.
func (m *Manager) UserByID(id int64) (*User, error) {
	row, err := m.users.GetByID(id)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return userFromRow(row), nil
}

// UserByUsername retrieves a user by its unique username.
func (m *Manager) UserByUsername(username string) (*User, error) {
	row, err := m.users.FindOneByColumn("username", username)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return userFromRow(row), nil
}

// UsersForAccount lists the users of one account.
func (m *Manager) UsersForAccount(accountID int64) ([]*User, error) {
	rows, err := m.users.FindByColumn("account_id", accountID)
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}

	return users, nil
}

// AuthenticateUser verifies username and password and returns the user.
func (m *Manager) AuthenticateUser(username, password string) (*User, error) {
	user, err := m.UserByUsername(username)
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// GenerateResetToken creates a fresh random reset token for the user and
// stores it with the current timestamp.
func (m *Manager) GenerateResetToken(username string) (string, error) {
	user, err := m.UserByUsername(username)
	if err != nil {
		return "", err
	}

	token := uniuri.NewLen(uniuri.TokenLen)

	if err := m.SetResetToken(user.ID, token); err != nil {
		return "", err
	}

	return token, nil
}

// SetResetToken stores a reset token for the user with the current
// timestamp as creation time.
func (m *Manager) SetResetToken(userID int64, token string) error {
	err := m.users.Update(userID, datastore.Row{
		"reset_token":            token,
		"reset_token_created_at": datastore.FormatTime(time.Now()),
	})
	if errors.Is(err, datastore.ErrRowNotFound) {
		return ErrUserNotFound
	}

	return err
}

// VerifyResetToken reports whether the given token matches the pending
// reset token of the user and is still within the expiry window.
func (m *Manager) VerifyResetToken(userID int64, token string, expiry time.Duration) bool {
	user, err := m.UserByID(userID)
	if err != nil {
		return false
	}

	if user.ResetToken == "" || token == "" || user.ResetToken != token {
		return false
	}

	if user.ResetTokenCreatedAt.IsZero() {
		return false
	}

	return time.Since(user.ResetTokenCreatedAt) < expiry
}

// ResetPassword sets a new password after verifying the reset token within
// the default expiry window. The token is cleared on success so it can not
// be replayed.
func (m *Manager) ResetPassword(username, token, newPassword string) error {
	user, err := m.UserByUsername(username)
	if err != nil {
		return err
	}

	if !m.VerifyResetToken(user.ID, token, DefaultResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = m.users.Update(user.ID, datastore.Row{
		"password_hash":          hash,
		"reset_token":            nil,
		"reset_token_created_at": nil,
	})
	if err != nil {
		return err
	}

	log.Info().Int64("user_id", user.ID).Msg("password reset")

	return nil
}

// SetPassword replaces the password of a user without token verification
// (admin operation).
func (m *Manager) SetPassword(userID int64, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = m.users.Update(userID, datastore.Row{"password_hash": hash})
	if errors.Is(err, datastore.ErrRowNotFound) {
		return ErrUserNotFound
	}

	return err
}

// UpdateUser renames a user. The new username must not be taken by
// anyone else.
func (m *Manager) UpdateUser(userID int64, username string) (*User, error) {
	existing, err := m.UserByUsername(username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if existing != nil && existing.ID != userID {
		return nil, ErrUsernameTaken
	}

	err = m.users.Update(userID, datastore.Row{"username": username})
	if errors.Is(err, datastore.ErrRowNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return m.UserByID(userID)
}

// DeleteUser removes a user.
func (m *Manager) DeleteUser(userID int64) error {
	err := m.users.Delete(userID)
	if errors.Is(err, datastore.ErrRowNotFound) {
		return ErrUserNotFound
	}

	return err
}
