package collector

import (
	"fmt"

	"github.com/distribution/reference"
)

// ImageName validates repository and returns it with tag appended, when tag
// is empty the repository is returned unchanged and the registry default
// tag applies.
func ImageName(repository, tag string) (string, error) {
	named, err := reference.ParseNormalizedNamed(repository)
	if err != nil {
		return "", fmt.Errorf("invalid image repository %q: %w", repository, err)
	}

	if tag == "" {
		return repository, nil
	}

	tagged, err := reference.WithTag(named, tag)
	if err != nil {
		return "", fmt.Errorf("invalid image tag %q: %w", tag, err)
	}

	return tagged.String(), nil
}
