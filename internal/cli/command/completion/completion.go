package completion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/promptcache/internal/i18n"
)

const bashCompletionScript = `#! /bin/bash

_promptcache_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"

    # Ask for suggestions using every word before the one being completed
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )

    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _promptcache_bash_autocomplete promptcache
`

const zshCompletionScript = `#compdef promptcache

_promptcache() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _promptcache promptcache
`

const installMarker = "# promptcache shell completion"

const installInfo = `
` + installMarker + `
if command -v promptcache >/dev/null 2>&1; then
	source <(promptcache completion %s)
fi
`

func NewCompletionCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:        "completion",
		Usage:       t.GetMessage("completion.command_usage", 0, nil),
		Description: t.GetMessage("completion.command_description", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "bash",
				Usage: t.GetMessage("completion.bash_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := io.WriteString(cmd.Root().Writer, bashCompletionScript)
					return err
				},
			},
			{
				Name:  "zsh",
				Usage: t.GetMessage("completion.zsh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := io.WriteString(cmd.Root().Writer, zshCompletionScript)
					return err
				},
			},
			{
				Name:  "install",
				Usage: t.GetMessage("completion.install_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("%s", t.GetMessage("completion.error_home_dir", 0, map[string]interface{}{"Error": err.Error()}))
					}
					return install(cmd.Root().Writer, os.Getenv("SHELL"), home, t)
				},
			},
		},
	}
}

// install appends the completion hook to the rc file of shell. It does nothing
// when the hook is already present.
func install(w io.Writer, shell, home string, t *i18n.Translations) error {
	var configFile, shellName string
	switch {
	case strings.Contains(shell, "zsh"):
		configFile = filepath.Join(home, ".zshrc")
		shellName = "zsh"
	case strings.Contains(shell, "bash"):
		configFile = filepath.Join(home, ".bashrc")
		shellName = "bash"
	default:
		return fmt.Errorf("%s", t.GetMessage("completion.error_unsupported_shell", 0, map[string]interface{}{"Shell": shell}))
	}

	fileContent, err := os.ReadFile(configFile)
	if err == nil && strings.Contains(string(fileContent), installMarker) {
		_, _ = fmt.Fprintln(w, t.GetMessage("completion.already_installed", 0, map[string]interface{}{"File": configFile}))
		_, _ = fmt.Fprintln(w, t.GetMessage("completion.restart_shell", 0, nil))
		_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
		return nil
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("%s", t.GetMessage("completion.error_open_config", 0, map[string]interface{}{"Error": err.Error()}))
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := fmt.Fprintf(f, installInfo, shellName); err != nil {
		return fmt.Errorf("%s", t.GetMessage("completion.error_write_config", 0, map[string]interface{}{"Error": err.Error()}))
	}

	_, _ = fmt.Fprintln(w, t.GetMessage("completion.installed_success", 0, map[string]interface{}{"File": configFile}))
	_, _ = fmt.Fprintln(w, t.GetMessage("completion.restart_shell", 0, nil))
	_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
	return nil
}
