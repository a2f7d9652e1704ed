package credentials

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

// ECRToken is the raw response of an ECR authorization token request
type ECRToken struct {
	// AuthorizationToken is the base64 encoded "username:password" pair
	AuthorizationToken secret.Value
	ProxyEndpoint      string
}

// TokenFetcher fetches an authorization token for the given registry id
type TokenFetcher interface {
	FetchToken(registryID string) (ECRToken, error)
}

// TokenFetcherFunc adapts a plain function to a TokenFetcher
type TokenFetcherFunc func(registryID string) (ECRToken, error)

func (f TokenFetcherFunc) FetchToken(registryID string) (ECRToken, error) {
	return f(registryID)
}

// ECRResolver resolves credentials for an ECR repository URL
type ECRResolver struct {
	Fetcher TokenFetcher
}

func NewECRResolver(f TokenFetcher) *ECRResolver {
	return &ECRResolver{Fetcher: f}
}

// Resolve derives the registry id from r.Server, fetches a token and
// decodes it. The returned server is the proxy endpoint of the token.
func (e *ECRResolver) Resolve(r Registry) (Credentials, error) {
	id, err := RegistryIDFromURL(r.Server)
	if err != nil {
		return Credentials{}, err
	}

	tkn, err := e.Fetcher.FetchToken(id)
	if err != nil {
		return Credentials{}, fmt.Errorf("unable to fetch authorization token for registry %s: %w", id, err)
	}

	user, pass, err := DecodeAuthorizationToken(tkn.AuthorizationToken)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		Server:   tkn.ProxyEndpoint,
		Username: user,
		Password: pass,
	}, nil
}

// RegistryIDFromURL returns the first label of the hostname in a repository
// URL, e.g. 123456789.dkr.ecr.us-east-1.amazonaws.com/collector returns
// 123456789. The scheme is optional.
func RegistryIDFromURL(repositoryURL string) (string, error) {
	raw := repositoryURL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unable to parse repository url %q: %w", repositoryURL, err)
	}

	id, _, _ := strings.Cut(u.Hostname(), ".")
	if id == "" {
		return "", fmt.Errorf("repository url %q does not contain a hostname", repositoryURL)
	}

	return id, nil
}

// DecodeAuthorizationToken base64 decodes an ECR token and splits it on the
// first ":" into username and password
func DecodeAuthorizationToken(token secret.Value) (secret.Value, secret.Value, error) {
	var decodeErr error
	decoded := token.Map(func(t string) string {
		d, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			decodeErr = err
			return ""
		}

		return string(d)
	})

	if decodeErr != nil {
		return secret.Value{}, secret.Value{}, &InvalidCredentialsError{Registry: "ecr", Reason: "token is not valid base64", Err: decodeErr}
	}

	user, pass, found := decoded.Cut(":")
	if !found {
		return secret.Value{}, secret.Value{}, &InvalidCredentialsError{Registry: "ecr", Reason: "token does not contain a username and password"}
	}

	if user.IsEmpty() || pass.IsEmpty() {
		return secret.Value{}, secret.Value{}, &InvalidCredentialsError{Registry: "ecr", Reason: "token contains an empty username or password"}
	}

	return user, pass, nil
}
