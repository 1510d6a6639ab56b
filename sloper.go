// Package sloper drafts close fitting bodice blocks (slopers) from body
// measurements.
//
// Drafting starts with Initialize, which checks the rule table and returns
// the Drafter every other operation hangs off:
//
//	d, err := sloper.Initialize()
//	m, err := sloper.NewBuilder().Waist(60)...Build()
//	base, err := d.NewBase(m, 14)
//	err = base.Draw(renderer, 900, 900)
//
// Drafting is pure; a Drafter and the Bases it builds are safe for
// concurrent use.
package sloper

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Drafter is the ready state of the package: a validated rule table and a
// logger. Its zero value is not usable.
type Drafter struct {
	rules Rules
	log   *zap.Logger
}

type Option func(*Drafter)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option {
	return func(d *Drafter) {
		d.rules = r
	}
}

// WithLogger sets the logger drafting reports to, at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(d *Drafter) {
		if l != nil {
			d.log = l
		}
	}
}

func Initialize(opts ...Option) (*Drafter, error) {
	d := &Drafter{
		rules: DefaultRules(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.rules.Validate(); err != nil {
		return nil, errors.WithMessage(err, "initialize")
	}
	d.log = d.log.Named("sloper")
	return d, nil
}

func (d *Drafter) Rules() Rules {
	return d.rules
}
