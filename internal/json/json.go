// Package json is the single JSON codec of the module, backed by sonic.
package json

import (
	"github.com/bytedance/sonic"
)

// Unmarshal decodes b into v.
func Unmarshal(b []byte, v any) error {
	return sonic.Unmarshal(b, v)
}

// Marshal encodes v.
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// MarshalIndent encodes v with std-compatible indentation, for human output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, prefix, indent)
}
