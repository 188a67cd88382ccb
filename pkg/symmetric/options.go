package symmetric

import "github.com/backkem/symcrypto/pkg/provider"

// OptionNonce is the name of the nonce option.
const OptionNonce = provider.OptionNonce

// Options are named byte options for Manager.Open and Manager.GenerateKey.
// A nil *Options means no options.
type Options struct {
	values map[string][]byte
}

// NewOptions returns an empty option set.
func NewOptions() *Options {
	return &Options{values: make(map[string][]byte)}
}

// WithNonce returns an option set holding only nonce.
func WithNonce(nonce []byte) *Options {
	o := NewOptions()
	o.values[OptionNonce] = append([]byte{}, nonce...)
	return o
}

// Set stores a copy of value under name.
// Returns ErrUnsupportedOption for any name but OptionNonce.
func (o *Options) Set(name string, value []byte) error {
	if name != OptionNonce {
		return newError("options_set", ErrUnsupportedOption, nil)
	}
	if o.values == nil {
		o.values = make(map[string][]byte)
	}
	o.values[name] = append([]byte{}, value...)
	return nil
}

// Get returns a copy of the value stored under name.
// Returns ErrUnsupportedOption if it is not set.
func (o *Options) Get(name string) ([]byte, error) {
	if o != nil {
		if v, ok := o.values[name]; ok {
			return append([]byte{}, v...), nil
		}
	}
	return nil, newError("options_get", ErrUnsupportedOption, nil)
}

// Nonce returns the nonce, or nil if unset.
func (o *Options) Nonce() []byte {
	if o == nil {
		return nil
	}
	return o.values[OptionNonce]
}

func (o *Options) has(name string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[name]
	return ok
}

func (o *Options) toProvider() provider.Options {
	if o == nil || len(o.values) == 0 {
		return nil
	}
	out := make(provider.Options, len(o.values))
	for name, v := range o.values {
		out[name] = v
	}
	return out
}
