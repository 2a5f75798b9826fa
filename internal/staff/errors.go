package staff

import "errors"

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password. Callers must not be able to tell which.
var ErrInvalidCredentials = errors.New("staff: invalid credentials")

// ErrNotFound is returned when no account matches.
var ErrNotFound = errors.New("staff: account not found")

// ErrUsernameTaken is returned by Create when the username already exists.
var ErrUsernameTaken = errors.New("staff: username already taken")

// ErrAuthDisabled is returned by Login when no signing secret is configured.
var ErrAuthDisabled = errors.New("staff: auth disabled: no jwt secret configured")

// ErrInvalidToken is returned by Verify for malformed, forged or expired
// tokens.
var ErrInvalidToken = errors.New("staff: invalid token")
