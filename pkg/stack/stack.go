// Package stack maps a variant name to the program which declares it.
package stack

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/jumppad-labs/collector-stack/pkg/stack/aca"
	"github.com/jumppad-labs/collector-stack/pkg/stack/fargate"
)

const (
	VariantACA     = "aca"
	VariantFargate = "fargate"
)

var ErrUnknownVariant = errors.New("unknown variant")

// Options are passed to the program of every variant
type Options struct {
	BuildContext string
	Logger       hclog.Logger
}

// Builder describes how to deploy one variant
type Builder struct {
	Variant string
	// Project is the default Pulumi project name
	Project string
	// RegionKey is the provider config key holding the deployment region
	RegionKey string
	// OutputURL is the export holding the collector endpoint
	OutputURL string

	program func(o Options) pulumi.RunFunc
}

// Program returns the Pulumi program for the variant
func (b Builder) Program(o Options) pulumi.RunFunc {
	return b.program(o)
}

var builders = map[string]Builder{
	VariantACA: {
		Variant:   VariantACA,
		Project:   "aca-collector",
		RegionKey: "azure-native:location",
		OutputURL: aca.OutputURL,
		program: func(o Options) pulumi.RunFunc {
			return aca.Program(aca.Options{BuildContext: o.BuildContext, Logger: o.Logger})
		},
	},
	VariantFargate: {
		Variant:   VariantFargate,
		Project:   "fargate-collector",
		RegionKey: "aws:region",
		OutputURL: fargate.OutputURL,
		program: func(o Options) pulumi.RunFunc {
			return fargate.Program(fargate.Options{BuildContext: o.BuildContext, Logger: o.Logger})
		},
	},
}

var aliases = map[string]string{
	"azure": VariantACA,
	"aws":   VariantFargate,
}

// Lookup returns the builder for the named variant or alias
func Lookup(variant string) (Builder, error) {
	v := strings.ToLower(variant)
	if a, ok := aliases[v]; ok {
		v = a
	}

	b, ok := builders[v]
	if !ok {
		return Builder{}, fmt.Errorf("%w %q, must be one of %s", ErrUnknownVariant, variant, strings.Join(Variants(), ", "))
	}

	return b, nil
}

// Variants returns the canonical variant names, sorted
func Variants() []string {
	v := []string{}
	for k := range builders {
		v = append(v, k)
	}

	sort.Strings(v)
	return v
}
