package config

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			root := command.Root()
			if err := flags.Apply(command, cfg, t); err != nil {
				ui.HandleAppError(root.ErrWriter, err, t)
				return err
			}
			showConfig(root.Writer, t, cfg)
			return nil
		},
	}
}

func showConfig(w io.Writer, t *i18n.Translations, cfg *config.Config) {
	notSet := t.GetMessage("config.not_set", 0, nil)
	orNotSet := func(v string) string {
		if v == "" {
			return notSet
		}
		return v
	}

	ui.PrintSectionBanner(w, t.GetMessage("config.current", 0, nil))

	ui.PrintKeyValue(w, t.GetMessage("config.language", 0, nil), cfg.Language)
	ui.PrintKeyValue(w, t.GetMessage("config.model", 0, nil), cfg.Model)
	ui.PrintKeyValue(w, t.GetMessage("config.base_url", 0, nil), orNotSet(cfg.BaseURL))
	ui.PrintKeyValue(w, t.GetMessage("config.data", 0, nil), cfg.DataPath)
	ui.PrintKeyValue(w, t.GetMessage("config.pricing", 0, nil), orNotSet(cfg.PricingPath))
	ui.PrintKeyValue(w, t.GetMessage("config.max_tokens", 0, nil), strconv.Itoa(cfg.MaxTokens))
	ui.PrintKeyValue(w, t.GetMessage("config.chat_max_tokens", 0, nil), strconv.Itoa(cfg.ChatMaxTokens))
	ui.PrintKeyValue(w, t.GetMessage("config.timeout", 0, nil), cfg.Timeout.String())
	ui.PrintKeyValue(w, t.GetMessage("config.record", 0, nil), strconv.FormatBool(cfg.Record))

	if dir, err := cfg.HistoryDir(); err == nil {
		ui.PrintKeyValue(w, t.GetMessage("config.history_dir", 0, nil), dir)
	}

	_, _ = fmt.Fprintln(w)
	if cfg.RequireAPIKey() != nil {
		ui.PrintWarning(w, t.GetMessage("config.api_key_not_set", 0, nil))
		return
	}
	ui.PrintSuccess(w, t.GetMessage("config.api_key_set", 0, map[string]interface{}{
		"Key": maskKey(cfg.APIKey),
	}))
}

// maskKey keeps only the last four characters of a secret.
func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
