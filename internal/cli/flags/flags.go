package flags

import (
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/logger"
)

const (
	Data    = "data"
	Model   = "model"
	Pricing = "pricing"
	Lang    = "lang"
	Record  = "record"
	Debug   = "debug"
	Verbose = "verbose"
)

// Global returns the flags shared by the root command and every subcommand.
func Global(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    Data,
			Aliases: []string{"d"},
			Usage:   t.GetMessage("flag.data", 0, nil),
		},
		&cli.StringFlag{
			Name:  Model,
			Usage: t.GetMessage("flag.model", 0, nil),
		},
		&cli.StringFlag{
			Name:  Pricing,
			Usage: t.GetMessage("flag.pricing", 0, nil),
		},
		&cli.StringFlag{
			Name:    Lang,
			Aliases: []string{"l"},
			Usage:   t.GetMessage("flag.lang", 0, nil),
		},
		&cli.BoolFlag{
			Name:  Record,
			Usage: t.GetMessage("flag.record", 0, nil),
		},
		&cli.BoolFlag{
			Name:  Debug,
			Usage: t.GetMessage("flag.debug", 0, nil),
		},
		&cli.BoolFlag{
			Name:    Verbose,
			Aliases: []string{"v"},
			Usage:   t.GetMessage("flag.verbose", 0, nil),
		},
	}
}

// Apply copies the flags the user set over cfg, configures logging and
// switches the output language. The resulting config is validated.
func Apply(cmd *cli.Command, cfg *config.Config, t *i18n.Translations) error {
	if cmd.IsSet(Data) {
		cfg.DataPath = cmd.String(Data)
	}
	if cmd.IsSet(Model) {
		cfg.Model = cmd.String(Model)
	}
	if cmd.IsSet(Pricing) {
		cfg.PricingPath = cmd.String(Pricing)
	}
	if cmd.IsSet(Lang) {
		cfg.Language = config.GetLocaleConfig(cmd.String(Lang))
	}
	if cmd.IsSet(Record) {
		cfg.Record = cmd.Bool(Record)
	}

	logger.Initialize(cmd.Bool(Debug), cmd.Bool(Verbose))

	if err := cfg.Validate(); err != nil {
		return err
	}
	return t.SetLanguage(cfg.Language)
}
