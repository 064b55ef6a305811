package config

import (
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/multierr"
)

// Args is the keyword argument bag of a component specification (init_args).
type Args map[string]any

// Has reports whether key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Keys returns the argument names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy; nil stays nil.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Require fails with one FieldError per missing key.
func (a Args) Require(component string, keys ...string) error {
	var err error
	for _, k := range keys {
		if !a.Has(k) {
			err = multierr.Append(err, MissingField(component, k))
		}
	}
	return err
}

// Decode copies the arguments into out, a pointer to an options struct with yaml tags.
// Unknown keys are rejected; numbers and strings are converted where unambiguous.
func (a Args) Decode(component string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return &ArgsError{Component: component, Err: err}
	}
	if a == nil {
		return nil
	}
	if err := dec.Decode(map[string]any(a)); err != nil {
		return &ArgsError{Component: component, Err: err}
	}
	return nil
}
