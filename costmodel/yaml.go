package costmodel

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseCoefficients decodes and validates YAML coefficients. Unknown keys
// are rejected.
//
//	normal:
//	  intercept: 3.3
//	  terms:
//	    - {feature: non_zero, weight: 1.5, mean: 2397282, scale: 4990159}
//	optimized:
//	  intercept: 1.3
//	  terms: []
func ParseCoefficients(data []byte) (Coefficients, error) {
	var c Coefficients
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Coefficients{}, errors.Wrap(err, "decode coefficients")
	}
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}

	return c, nil
}

// LoadCoefficients reads ParseCoefficients input from a file.
func LoadCoefficients(path string) (Coefficients, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Coefficients{}, errors.Wrapf(err, "read coefficients %q", path)
	}
	c, err := ParseCoefficients(data)
	if err != nil {
		return Coefficients{}, errors.Wrapf(err, "load coefficients %q", path)
	}

	return c, nil
}

// MarshalCoefficients encodes c as YAML.
func MarshalCoefficients(c Coefficients) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode coefficients")
	}

	return data, nil
}
