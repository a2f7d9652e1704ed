package credentials

import (
	"fmt"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

// AdminCredentials is the admin user response of a container registry
type AdminCredentials struct {
	Username  *string
	Passwords []secret.Value
}

// CredentialLister lists the admin credentials for a registry
type CredentialLister interface {
	ListCredentials(resourceGroup, registry string) (AdminCredentials, error)
}

// CredentialListerFunc adapts a plain function to a CredentialLister
type CredentialListerFunc func(resourceGroup, registry string) (AdminCredentials, error)

func (f CredentialListerFunc) ListCredentials(resourceGroup, registry string) (AdminCredentials, error) {
	return f(resourceGroup, registry)
}

// ACRResolver resolves the admin credentials of an Azure container registry
type ACRResolver struct {
	Lister CredentialLister
}

func NewACRResolver(l CredentialLister) *ACRResolver {
	return &ACRResolver{Lister: l}
}

// Resolve lists the admin credentials for r and uses the username and the
// first password. The returned server is r.Server.
func (a *ACRResolver) Resolve(r Registry) (Credentials, error) {
	ac, err := a.Lister.ListCredentials(r.ResourceGroup, r.Name)
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to list credentials for registry %s/%s: %w", r.ResourceGroup, r.Name, err)
	}

	if ac.Username == nil || *ac.Username == "" {
		return Credentials{}, &InvalidCredentialsError{Registry: r.Name, Reason: "admin user is not enabled"}
	}

	if len(ac.Passwords) == 0 {
		return Credentials{}, &InvalidCredentialsError{Registry: r.Name, Reason: "no admin passwords returned"}
	}

	c := Credentials{
		Server:   r.Server,
		Username: secret.New(*ac.Username),
		Password: ac.Passwords[0],
	}

	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}

	return c, nil
}
