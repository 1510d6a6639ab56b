package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/config"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type cli struct {
	Debug bool   `help:"Log drafting steps to stderr. Also on when SLOPER_DEBUG is set."`
	Rules string `type:"existingfile" help:"YAML file of drafting rule overrides. Defaults to SLOPER_RULES."`
	Lang  string `default:"en" help:"Language used to print numbers in reports."`

	Draw   DrawCmd   `cmd:"" help:"Draft a sloper and write it as SVG."`
	Values ValuesCmd `cmd:"" help:"Print the construction values of a draft."`
	Layout LayoutCmd `cmd:"" help:"Plan a cutting marker on a fabric width."`
	Batch  BatchCmd  `cmd:"" help:"Draft every profile matching a glob."`
	Watch  WatchCmd  `cmd:"" help:"Redraft a profile each time it changes."`
}

// app is handed to every command's Run.
type app struct {
	drafter *sloper.Drafter
	log     *zap.Logger
	p       *message.Printer
	stdout  io.Writer
}

func newApp(c *cli, stdout io.Writer) (*app, error) {
	cfg := config.New()
	cfg.Debug = cfg.Debug || c.Debug
	if c.Rules != "" {
		cfg.RulesPath = c.Rules
	}

	log := zap.NewNop()
	if cfg.Debug {
		l, err := cfg.Logger()
		if err != nil {
			return nil, err
		}
		log = l
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	d, err := sloper.Initialize(sloper.WithRules(rules), sloper.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &app{
		drafter: d,
		log:     log,
		p:       message.NewPrinter(language.Make(c.Lang)),
		stdout:  stdout,
	}, nil
}

func parser(c *cli, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("sloper"),
		kong.Description("Draft close fitting bodice blocks from body measurements."),
		kong.ShortUsageOnError(),
		kong.Vars{"default_ease": "14"},
	}, options...)
	return kong.New(c, options...)
}

func main() {
	var c cli
	k, err := parser(&c)
	if err != nil {
		panic(err)
	}
	kctx, err := k.Parse(os.Args[1:])
	k.FatalIfErrorf(err)

	a, err := newApp(&c, os.Stdout)
	kctx.FatalIfErrorf(err)
	defer a.log.Sync()

	err = kctx.Run(a)
	kctx.FatalIfErrorf(err)
}
