package config

import (
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
)

type ConfigCommandFactory struct{}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
		},
	}
}
