// Package config reads the settings file describing the collector stacks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jumppad-labs/collector-stack/pkg/collector"
	"github.com/jumppad-labs/collector-stack/pkg/stack"
	"github.com/jumppad-labs/collector-stack/pkg/utils"
)

var ErrNoStacks = errors.New("no stacks defined")
var ErrStackNotFound = errors.New("stack not found")
var ErrDuplicateStack = errors.New("stack defined more than once")
var ErrMissingRegion = errors.New("missing deployment region")
var ErrNotHCLFile = errors.New("settings file must be a .hcl file")

// Stack is a single deployable collector stack
type Stack struct {
	Name    string `hcl:"name,label"`
	Variant string `hcl:"variant"`

	// Project overrides the default Pulumi project of the variant
	Project string `hcl:"project,optional"`

	// BuildContext is the collector docker build context, relative paths
	// are resolved against the settings file
	BuildContext string `hcl:"build_context,optional"`

	// Location is the Azure location, aca only
	Location string `hcl:"location,optional"`
	// Region is the AWS region, fargate only
	Region string `hcl:"region,optional"`

	// APIKeyEnv is the environment variable the Honeycomb key is read from
	APIKeyEnv string `hcl:"api_key_env,optional"`
}

// DeploymentRegion returns the location or region for the variant
func (s *Stack) DeploymentRegion() string {
	if s.Variant == stack.VariantACA {
		return s.Location
	}

	return s.Region
}

// Settings is the decoded settings file
type Settings struct {
	Stacks []*Stack `hcl:"stack,block"`

	// File is the absolute path the settings were read from
	File string
}

// Parse reads and validates the settings file at path
func Parse(path string) (*Settings, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve settings path %s: %w", path, err)
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("unable to read settings file: %w", err)
	}

	if !utils.IsHCLFile(abs) {
		return nil, fmt.Errorf("%w: %s", ErrNotHCLFile, abs)
	}

	return ParseSource(src, abs)
}

// ParseSource decodes settings from src, filename is used for diagnostics
// and as the base of relative build contexts
func ParseSource(src []byte, filename string) (*Settings, error) {
	p := hclparse.NewParser()

	f, diags := p.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &ParseError{File: filename, Diags: diags}
	}

	s := &Settings{}
	diags = gohcl.DecodeBody(f.Body, nil, s)
	if diags.HasErrors() {
		return nil, &ParseError{File: filename, Diags: diags}
	}

	s.File = filename
	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Settings) validate() error {
	if len(s.Stacks) == 0 {
		return fmt.Errorf("%s: %w", s.File, ErrNoStacks)
	}

	seen := map[string]bool{}
	for _, st := range s.Stacks {
		if _, err := utils.ValidateName(st.Name); err != nil {
			return fmt.Errorf("invalid stack name %q: %w", st.Name, err)
		}

		if seen[st.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateStack, st.Name)
		}
		seen[st.Name] = true

		b, err := stack.Lookup(st.Variant)
		if err != nil {
			return fmt.Errorf("stack %s: %w", st.Name, err)
		}

		st.Variant = b.Variant

		if st.DeploymentRegion() == "" {
			attr := "region"
			if st.Variant == stack.VariantACA {
				attr = "location"
			}

			return fmt.Errorf("stack %s: %w, %s must be set for variant %s", st.Name, ErrMissingRegion, attr, st.Variant)
		}

		if st.Project == "" {
			st.Project = b.Project
		}

		if st.APIKeyEnv == "" {
			st.APIKeyEnv = collector.APIKeyEnv
		}

		if st.BuildContext != "" {
			st.BuildContext = utils.EnsureAbsolute(st.BuildContext, s.File)
		}
	}

	return nil
}

// Find returns the named stack, when the settings hold a single stack the
// name may be empty
func (s *Settings) Find(name string) (*Stack, error) {
	if name == "" {
		if len(s.Stacks) == 1 {
			return s.Stacks[0], nil
		}

		return nil, fmt.Errorf("%d stacks defined, please specify one with --stack", len(s.Stacks))
	}

	for _, st := range s.Stacks {
		if st.Name == name {
			return st, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrStackNotFound, name)
}

// ParseError is returned when the settings file is not valid HCL or does
// not match the schema
type ParseError struct {
	File  string
	Diags hcl.Diagnostics
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse settings file %s: %s", e.File, e.Diags.Error())
}
