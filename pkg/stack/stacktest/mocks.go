// Package stacktest contains helpers for running the stack programs against
// the Pulumi mock monitor.
package stacktest

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	Project = "collector"
	Stack   = "test"
)

// OutputsFunc returns the mocked outputs for a resource, the resource inputs
// are always echoed back so only computed properties need to be returned
type OutputsFunc func(args pulumi.MockResourceArgs) resource.PropertyMap

// CallFunc returns the mocked result of an invoke
type CallFunc func(args pulumi.MockCallArgs) (resource.PropertyMap, error)

// Mocks records every resource and invoke the program makes
type Mocks struct {
	// Default is applied to every resource before Outputs
	Default OutputsFunc
	Outputs map[string]OutputsFunc
	Calls   map[string]CallFunc

	mu        sync.Mutex
	resources []pulumi.MockResourceArgs
	invokes   []pulumi.MockCallArgs
}

func (m *Mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	if args.TypeToken == "pulumi:pulumi:Stack" {
		return args.Name, resource.PropertyMap{}, nil
	}

	m.mu.Lock()
	m.resources = append(m.resources, args)
	m.mu.Unlock()

	outs := args.Inputs.Copy()
	if m.Default != nil {
		for k, v := range m.Default(args) {
			outs[k] = v
		}
	}

	if f, ok := m.Outputs[args.TypeToken]; ok {
		for k, v := range f(args) {
			outs[k] = v
		}
	}

	return args.Name + "_id", outs, nil
}

func (m *Mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	m.mu.Lock()
	m.invokes = append(m.invokes, args)
	m.mu.Unlock()

	if f, ok := m.Calls[args.Token]; ok {
		return f(args)
	}

	return nil, fmt.Errorf("unexpected invoke %s", args.Token)
}

// Resources returns the declared resources of the given type
func (m *Mocks) Resources(typeToken string) []pulumi.MockResourceArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []pulumi.MockResourceArgs
	for _, r := range m.resources {
		if r.TypeToken == typeToken {
			res = append(res, r)
		}
	}

	return res
}

// Resource returns the single declared resource with the given type and name
func (m *Mocks) Resource(t *testing.T, typeToken, name string) pulumi.MockResourceArgs {
	t.Helper()

	for _, r := range m.Resources(typeToken) {
		if r.Name == name {
			return r
		}
	}

	t.Fatalf("resource %s %q was not declared", typeToken, name)
	return pulumi.MockResourceArgs{}
}

// All returns every declared resource in declaration order
func (m *Mocks) All() []pulumi.MockResourceArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]pulumi.MockResourceArgs(nil), m.resources...)
}

// Invokes returns the recorded invokes with the given token
func (m *Mocks) Invokes(token string) []pulumi.MockCallArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []pulumi.MockCallArgs
	for _, c := range m.invokes {
		if c.Token == token {
			res = append(res, c)
		}
	}

	return res
}

// SetAPIKey sets the Honeycomb key as secret stack config for the mock run
func SetAPIKey(t *testing.T, key string) {
	t.Helper()

	t.Setenv("PULUMI_CONFIG", fmt.Sprintf(`{"%s:honeycomb-api-key": %q}`, Project, key))
	t.Setenv("PULUMI_CONFIG_SECRET_KEYS", fmt.Sprintf(`["%s:honeycomb-api-key"]`, Project))
}

// Run executes the program against m
func Run(prog pulumi.RunFunc, m *Mocks) error {
	return pulumi.RunErr(prog, pulumi.WithMocks(Project, Stack, m))
}

// Capture blocks until o resolves and stores the value in dst. It must be
// called from within the program passed to Run and only for outputs which
// are expected to resolve.
func Capture(o pulumi.Output, dst *interface{}) {
	var wg sync.WaitGroup
	wg.Add(1)

	pulumi.All(o).ApplyT(func(args []interface{}) error {
		*dst = args[0]
		wg.Done()
		return nil
	})

	wg.Wait()
}

// Collect walks a property value and returns every plain text string found
// outside of secret values. Paths listed in skip are ignored.
func Collect(v resource.PropertyValue, path string, skip map[string]bool, out map[string]string) {
	if skip[path] {
		return
	}

	switch {
	case v.IsSecret():
		return
	case v.IsString():
		out[path] = v.StringValue()
	case v.IsArray():
		for i, e := range v.ArrayValue() {
			Collect(e, fmt.Sprintf("%s[%d]", path, i), skip, out)
		}
	case v.IsObject():
		for k, e := range v.ObjectValue() {
			p := string(k)
			if path != "" {
				p = path + "." + p
			}
			Collect(e, p, skip, out)
		}
	case v.IsOutput():
		if v.OutputValue().Secret {
			return
		}
		Collect(v.OutputValue().Element, path, skip, out)
	}
}

// Unwrap removes secret and output wrappers from v
func Unwrap(v resource.PropertyValue) resource.PropertyValue {
	for {
		switch {
		case v.IsSecret():
			v = v.SecretValue().Element
		case v.IsOutput():
			v = v.OutputValue().Element
		default:
			return v
		}
	}
}

// Get follows keys through nested objects and arrays, unwrapping secrets on
// the way. Numeric keys index arrays.
func Get(m resource.PropertyMap, keys ...string) resource.PropertyValue {
	v, _ := walk(m, keys)
	return Unwrap(v)
}

// Secret reports whether the value at keys, or any value enclosing it, is
// marked secret
func Secret(m resource.PropertyMap, keys ...string) bool {
	v, secret := walk(m, keys)
	if v.IsNull() {
		return false
	}

	return secret || isSecret(v)
}

func walk(m resource.PropertyMap, keys []string) (resource.PropertyValue, bool) {
	v := resource.NewObjectProperty(m)
	secret := false

	for _, k := range keys {
		secret = secret || isSecret(v)
		v = Unwrap(v)

		switch {
		case v.IsObject():
			v = v.ObjectValue()[resource.PropertyKey(k)]
		case v.IsArray():
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i >= len(v.ArrayValue()) {
				return resource.NewNullProperty(), false
			}
			v = v.ArrayValue()[i]
		default:
			return resource.NewNullProperty(), false
		}
	}

	return v, secret
}

func isSecret(v resource.PropertyValue) bool {
	for {
		switch {
		case v.IsSecret():
			return true
		case v.IsOutput():
			if v.OutputValue().Secret {
				return true
			}
			v = v.OutputValue().Element
		default:
			return false
		}
	}
}

// Declared returns the type and name of each resource, sorted, and the inputs
// keyed by the same value
func (m *Mocks) Declared() ([]string, map[string]resource.PropertyMap) {
	all := m.All()

	keys := make([]string, 0, len(all))
	inputs := map[string]resource.PropertyMap{}
	for _, r := range all {
		k := r.TypeToken + "::" + r.Name
		keys = append(keys, k)
		inputs[k] = r.Inputs
	}

	sort.Strings(keys)
	return keys, inputs
}
