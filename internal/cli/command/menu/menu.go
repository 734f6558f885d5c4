package menu

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/cli/command/chat"
	"github.com/thomas-vilte/promptcache/internal/cli/command/demo"
	"github.com/thomas-vilte/promptcache/internal/cli/flags"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/di"
	"github.com/thomas-vilte/promptcache/internal/services"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

const (
	choiceDemo = "1"
	choiceChat = "2"
	choiceExit = "3"
)

// Action is the root command's action: it prints the banner and lets the
// user pick the scripted demo or the chat.
func Action(container *di.Container) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		t := container.GetTranslations()
		cfg := container.GetConfig()
		root := cmd.Root()

		if err := flags.Apply(cmd, cfg, t); err != nil {
			ui.HandleAppError(root.ErrWriter, err, t)
			return err
		}

		container.NewReporter(root.Writer).Header()

		if err := cfg.RequireAPIKey(); err != nil {
			ui.HandleAppError(root.ErrWriter, err, t)
			return err
		}

		in := bufio.NewReader(root.Reader)
		choice, err := readChoice(ctx, root.Writer, in, t)
		if err != nil && !stderrors.Is(err, io.EOF) {
			return err
		}

		switch choice {
		case choiceDemo:
			return demo.Run(ctx, cmd, container, nil)
		case choiceChat:
			return chat.Run(ctx, cmd, container, in)
		case choiceExit, "":
			_, _ = ui.Success.Fprintln(root.Writer, t.GetMessage("menu.goodbye", 0, nil))
			return nil
		default:
			_, _ = ui.Error.Fprintln(root.Writer, t.GetMessage("menu.invalid", 0, nil))
			return nil
		}
	}
}

// readChoice prompts for a menu option. End of input reads as an empty
// choice; a cancelled ctx returns ctx.Err() without waiting for a line.
func readChoice(ctx context.Context, w io.Writer, in *bufio.Reader, t *i18n.Translations) (string, error) {
	_, _ = ui.Bold.Fprintln(w, t.GetMessage("menu.choose", 0, nil))
	_, _ = fmt.Fprintln(w, t.GetMessage("menu.option_demo", 0, nil))
	_, _ = fmt.Fprintln(w, t.GetMessage("menu.option_chat", 0, nil))
	_, _ = fmt.Fprintln(w, t.GetMessage("menu.option_exit", 0, nil))
	_, _ = fmt.Fprintln(w)
	_, _ = ui.Info.Fprint(w, t.GetMessage("menu.enter", 0, nil))

	return services.ReadLine(ctx, in)
}
