// FILE: hooklog/src/cmd/hooklog/commands/version.go
package commands

import (
	"fmt"

	"hooklog/src/internal/version"
)

// VersionCommand handles version display
type VersionCommand struct{}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Println(version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show hooklog version information

Usage:
  hooklog version
  hooklog -v
  hooklog --version

Output includes:
  - Version number
  - Build date
  - Git commit hash (if available)
`
}
