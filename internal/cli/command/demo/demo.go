package demo

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/completion_helper"
	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/di"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

const promptFlag = "prompt"

type DemoCommandFactory struct {
	container *di.Container
}

func NewDemoCommandFactory(container *di.Container) *DemoCommandFactory {
	return &DemoCommandFactory{container: container}
}

func (f *DemoCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "demo",
		Aliases: []string{"d"},
		Usage:   t.GetMessage("demo.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    promptFlag,
				Aliases: []string{"p"},
				Usage:   t.GetMessage("demo.prompt_flag", 0, nil),
				Local:   true,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := flags.Apply(cmd, cfg, t); err != nil {
				ui.HandleAppError(cmd.Root().ErrWriter, err, t)
				return err
			}
			f.container.NewReporter(cmd.Root().Writer).Header()
			return Run(ctx, cmd, f.container, cmd.StringSlice(promptFlag))
		},
	}
}

// Run executes the scripted demonstration. With no prompts the built-in
// questions are used.
func Run(ctx context.Context, cmd *cli.Command, container *di.Container, prompts []string) error {
	root := cmd.Root()
	reporter := container.NewReporter(root.Writer)

	svc, err := container.NewDemoService(root.Writer, reporter)
	if err != nil {
		ui.HandleAppError(root.ErrWriter, err, container.GetTranslations())
		return err
	}

	_, err = svc.RunScripted(ctx, prompts)
	return err
}
