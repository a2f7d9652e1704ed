package credentials

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
	"github.com/jumppad-labs/collector-stack/pkg/stack/stacktest"
)

func TestSecretOutputProjectsFieldAsSecret(t *testing.T) {
	var username, password interface{}
	var usernameSecret, passwordSecret bool

	prog := func(ctx *pulumi.Context) error {
		creds := pulumi.Any(Credentials{
			Server:   "securecollector.azurecr.io",
			Username: secret.New("securecollector"),
			Password: secret.New("acr-password-5678"),
		})

		u := SecretOutput(creds, func(c Credentials) secret.Value { return c.Username })
		p := SecretOutput(creds, func(c Credentials) secret.Value { return c.Password })

		stacktest.Capture(u, &username)
		stacktest.Capture(p, &password)
		usernameSecret = pulumi.IsSecret(u)
		passwordSecret = pulumi.IsSecret(p)

		return nil
	}

	err := stacktest.Run(prog, &stacktest.Mocks{})
	require.NoError(t, err)

	require.Equal(t, "securecollector", username)
	require.Equal(t, "acr-password-5678", password)
	require.True(t, usernameSecret)
	require.True(t, passwordSecret)
}
