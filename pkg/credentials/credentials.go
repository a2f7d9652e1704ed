package credentials

import (
	"errors"
	"fmt"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

// ErrInvalidCredentials is matched by every InvalidCredentialsError
var ErrInvalidCredentials = errors.New("invalid credentials")

// InvalidCredentialsError is returned when a provider response can not be
// turned into a usable username and password
type InvalidCredentialsError struct {
	Registry string
	Reason   string
	Err      error
}

func (e *InvalidCredentialsError) Error() string {
	msg := fmt.Sprintf("invalid credentials for registry %q: %s", e.Registry, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}

	return msg
}

func (e *InvalidCredentialsError) Unwrap() error {
	return e.Err
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// Registry identifies the registry to resolve credentials for
type Registry struct {
	// Server is the login server or repository URL
	Server string
	// ResourceGroup is only used by providers which scope registries to a group
	ResourceGroup string
	Name          string
}

// Credentials are the normalised details needed to push an image
type Credentials struct {
	Server   string
	Username secret.Value
	Password secret.Value
}

// Validate returns an InvalidCredentialsError when either half is missing
func (c Credentials) Validate() error {
	if c.Username.IsEmpty() {
		return &InvalidCredentialsError{Registry: c.Server, Reason: "empty username"}
	}

	if c.Password.IsEmpty() {
		return &InvalidCredentialsError{Registry: c.Server, Reason: "empty password"}
	}

	return nil
}

// Resolver turns a provider specific credential lookup into Credentials
type Resolver interface {
	Resolve(r Registry) (Credentials, error)
}
