package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/innermond/sloper"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultEase = 14

// profile is the YAML form of a measurement profile:
//
//	name: size 10
//	ease: 14
//	measurements:
//	  waist: 60
//	  ...
type profile struct {
	Name         string        `yaml:"name"`
	Ease         *float64      `yaml:"ease"`
	Measurements sloper.Fields `yaml:"measurements"`
}

func readProfile(path string) (*profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open profile")
	}
	defer f.Close()

	p := &profile{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrapf(err, "decode profile %s", path)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// source is where a command takes its measurements from: a profile file,
// name=value arguments, or both, the arguments winning.
type source struct {
	Profile  string   `short:"p" type:"existingfile" help:"YAML measurement profile."`
	Ease     float64  `short:"e" default:"-1" help:"Ease in cm. Defaults to the profile's, or ${default_ease}."`
	Measures []string `arg:"" optional:"" help:"Measurements as name=value, e.g. waist=60."`
}

func (s *source) load() (sloper.Measurements, sloper.Ease, error) {
	ease := -1.0
	tokens := []string{}
	if s.Profile != "" {
		p, err := readProfile(s.Profile)
		if err != nil {
			return sloper.Measurements{}, 0, err
		}
		tokens = append(tokens, fieldTokens(p.Measurements)...)
		if p.Ease != nil {
			ease = *p.Ease
		}
	}
	tokens = append(tokens, s.Measures...)

	m, err := sloper.ParseMeasurements(tokens)
	if err != nil {
		return sloper.Measurements{}, 0, err
	}
	return m, pickEase(s.Ease, ease), nil
}

// pickEase prefers the flag, then the profile, then the default.
func pickEase(flag, fromProfile float64) sloper.Ease {
	switch {
	case flag >= 0:
		return sloper.Ease(flag)
	case fromProfile >= 0:
		return sloper.Ease(fromProfile)
	}
	return defaultEase
}

// fieldTokens turns the fields given in a profile into name=value tokens.
func fieldTokens(f sloper.Fields) []string {
	named := []struct {
		name string
		v    float64
	}{
		{"waist", f.Waist},
		{"hps_to_waist", f.HPSToWaist},
		{"nape_to_waist", f.NapeToWaist},
		{"armscye_depth", f.ArmscyeDepth},
		{"neck_size", f.NeckSize},
		{"shoulder", f.Shoulder},
		{"x_front", f.XFront},
		{"x_back", f.XBack},
		{"sleeve_len", f.SleeveLen},
	}
	var out []string
	for _, n := range named {
		if n.v != 0 {
			out = append(out, n.name+"="+strconv.FormatFloat(n.v, 'g', -1, 64))
		}
	}
	return out
}
