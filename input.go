package sloper

import (
	"strconv"
	"strings"
)

// ParseMeasurements reads "name=value" tokens such as "waist=60" into a
// finalised record. Every malformed token is reported, together with the
// problems Build finds afterwards.
func ParseMeasurements(tokens []string) (Measurements, error) {
	b := NewBuilder()
	verr := &ValidationError{}
	for _, tok := range tokens {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			verr.add(tok, "is not name=value")
			continue
		}
		name := strings.ToLower(strings.TrimSpace(kv[0]))
		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			verr.add(name, "is not a number: %q", kv[1])
			continue
		}
		if err := b.Set(name, v); err != nil {
			verr.Problems = append(verr.Problems, err.(*ValidationError).Problems...)
		}
	}

	m, err := b.Build()
	if err != nil {
		verr.Problems = append(verr.Problems, err.(*ValidationError).Problems...)
	}
	if err := verr.orNil(); err != nil {
		return Measurements{}, err
	}
	return m, nil
}
