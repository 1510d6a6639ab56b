package main

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/innermond/sloper/internal/geom"
)

type ValuesCmd struct {
	source

	JSON bool `help:"Print JSON instead of a table."`
}

func (c *ValuesCmd) Run(a *app) error {
	m, ease, err := c.load()
	if err != nil {
		return err
	}
	v, err := a.drafter.ComputeValues(m, ease)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	// one line per value, named as in JSON
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
		switch x := rv.Field(i).Interface().(type) {
		case geom.Vec:
			a.p.Fprintf(a.stdout, "%-22s %9.2f %9.2f\n", name, x.X, x.Y)
		default:
			a.p.Fprintf(a.stdout, "%-22s %9.2f\n", name, rv.Field(i).Float())
		}
	}
	return nil
}
