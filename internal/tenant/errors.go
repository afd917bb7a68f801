package tenant

import "errors"

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountNameTaken is returned when attempting to create an account with a name that already exists.
	ErrAccountNameTaken = errors.New("account name already exists")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when attempting to create a user with a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidResetToken is returned when a reset token is missing, wrong or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
