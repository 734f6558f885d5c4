package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/command/chat"
	"github.com/thomas-vilte/promptcache/internal/cli/command/completion"
	configcmd "github.com/thomas-vilte/promptcache/internal/cli/command/config"
	"github.com/thomas-vilte/promptcache/internal/cli/command/demo"
	"github.com/thomas-vilte/promptcache/internal/cli/command/menu"
	"github.com/thomas-vilte/promptcache/internal/cli/command/stats"
	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/cli/registry"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/di"
	"github.com/thomas-vilte/promptcache/internal/version"
)

const Name = "promptcache"

// New builds the root command. Without a subcommand it shows the interactive
// menu.
func New(container *di.Container) (*cli.Command, error) {
	cfg := container.GetConfig()
	translations := container.GetTranslations()

	registerCommand := registry.NewRegistry(cfg, translations)

	if err := registerCommand.Register("demo", demo.NewDemoCommandFactory(container)); err != nil {
		return nil, fmt.Errorf("error registering command 'demo': %w", err)
	}
	if err := registerCommand.Register("chat", chat.NewChatCommandFactory(container)); err != nil {
		return nil, fmt.Errorf("error registering command 'chat': %w", err)
	}
	if err := registerCommand.Register("config", configcmd.NewConfigCommandFactory()); err != nil {
		return nil, fmt.Errorf("error registering command 'config': %w", err)
	}
	if err := registerCommand.Register("doctor", configcmd.NewDoctorCommand(container)); err != nil {
		return nil, fmt.Errorf("error registering command 'doctor': %w", err)
	}
	if err := registerCommand.Register("stats", stats.NewStatsCommand(container)); err != nil {
		return nil, fmt.Errorf("error registering command 'stats': %w", err)
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations))

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd.Root())
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:                  Name,
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.Version,
		Description:           translations.GetMessage("app_description", 0, nil),
		Flags:                 flags.Global(translations),
		Action:                menu.Action(container),
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
