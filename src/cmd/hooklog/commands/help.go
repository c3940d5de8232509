// FILE: hooklog/src/cmd/hooklog/commands/help.go
package commands

import (
	"fmt"
	"sort"
	"strings"
)

// generalHelpTemplate is the default help message shown when no specific command is requested.
const generalHelpTemplate = `hooklog: relays log output to a chat webhook without blocking the caller.

Usage:
  hooklog [command] [options]
  hooklog [options] [--section.key=value ...]

Commands:
%s

Relay Options:
  -c, --config <path>      Path to configuration file (default: ~/.config/hooklog.toml)
  -q, --quiet              Suppress all console output, including errors
      --no-stdin           Do not relay lines read from standard input
  -h, --help               Display this help message and exit
  -v, --version            Display version information and exit

Any configuration key can be overridden on the command line:
  --webhook.logging_enabled=true --tcp.enabled=true --tcp.port=9470

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (and ./.env) override file settings
  - WEBHOOK_ID, WEBHOOK_TOKEN and WEBHOOK_LOGGING_ENABLED hold the credentials
  - Other keys use HOOKLOG_<SECTION>_<KEY>, e.g. HOOKLOG_QUEUE_CAPACITY

Examples:
  # Forward a command's output
  some-service 2>&1 | WEBHOOK_LOGGING_ENABLED=true hooklog

  # Accept lines over TCP only
  hooklog --no-stdin --tcp.enabled=true

For command-specific help:
  hooklog help <command>
  hooklog <command> --help
`

// HelpCommand handles the display of general or command-specific help messages.
type HelpCommand struct {
	router *CommandRouter
}

// NewHelpCommand creates a new help command handler.
func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

// Execute displays the appropriate help message based on the provided arguments.
func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		cmdName := args[0]

		if handler, exists := c.router.GetCommand(cmdName); exists {
			fmt.Print(handler.Help())
			return nil
		}

		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

// Description returns a brief one-line description of the command.
func (c *HelpCommand) Description() string {
	return "Display help information"
}

// Help returns the detailed help text for the 'help' command itself.
func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  hooklog help              Show general help
  hooklog help <command>    Show help for a specific command

Examples:
  hooklog help              # Show general help
  hooklog help send         # Show send command help
  hooklog send --help       # Alternative way to get command help
`
}

// formatCommandList creates a formatted and aligned list of all available commands.
func (c *HelpCommand) formatCommandList() string {
	commands := c.router.GetCommands()

	names := make([]string, 0, len(commands))
	maxLen := 0
	for name := range commands {
		names = append(names, name)
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		handler := commands[name]
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		lines = append(lines, fmt.Sprintf("  %s%s%s", name, padding, handler.Description()))
	}

	return strings.Join(lines, "\n")
}
