package chat

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/completion_helper"
	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/di"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

type ChatCommandFactory struct {
	container *di.Container
}

func NewChatCommandFactory(container *di.Container) *ChatCommandFactory {
	return &ChatCommandFactory{container: container}
}

func (f *ChatCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "chat",
		Aliases:       []string{"c"},
		Usage:         t.GetMessage("chat.usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := flags.Apply(cmd, cfg, t); err != nil {
				ui.HandleAppError(cmd.Root().ErrWriter, err, t)
				return err
			}
			f.container.NewReporter(cmd.Root().Writer).Header()
			return Run(ctx, cmd, f.container, cmd.Root().Reader)
		},
	}
}

// Run starts an interactive session reading user turns from in.
func Run(ctx context.Context, cmd *cli.Command, container *di.Container, in io.Reader) error {
	root := cmd.Root()
	reporter := container.NewReporter(root.Writer)

	svc, err := container.NewDemoService(root.Writer, reporter)
	if err != nil {
		ui.HandleAppError(root.ErrWriter, err, container.GetTranslations())
		return err
	}

	_, err = svc.Chat(ctx, in)
	if err != nil && ctx.Err() == nil {
		ui.HandleAppError(root.ErrWriter, err, container.GetTranslations())
	}
	return err
}
