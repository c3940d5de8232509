// FILE: hooklog/src/cmd/hooklog/commands/send.go
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"hooklog/src/internal/config"
	"hooklog/src/internal/webhook"
	"hooklog/src/internal/writer"

	"github.com/lixenwraith/log"
)

// SendCommand delivers one message synchronously, bypassing the queue
type SendCommand struct {
	output io.Writer
	errOut io.Writer
}

func NewSendCommand() *SendCommand {
	return &SendCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (sc *SendCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("send", flag.ContinueOnError)
	cmd.SetOutput(sc.errOut)

	var (
		wait       = cmd.Bool("w", false, "Wait for the stored message and print its id")
		waitLong   = cmd.Bool("wait", false, "Wait for the stored message and print its id")
		configFile = cmd.String("c", "", "Config file path")
		configLong = cmd.String("config", "", "Config file path")
		timeoutMS  = cmd.Int("timeout", 10000, "Delivery timeout in milliseconds (0 = none)")
		verbose    = cmd.Bool("verbose", false, "Log webhook diagnostics to stderr")
	)

	cmd.Usage = func() {
		fmt.Fprint(sc.errOut, sc.Help())
		fmt.Fprintln(sc.errOut, "\nOptions:")
		cmd.PrintDefaults()
	}

	if err := cmd.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	// flag stops at the first positional argument; a later flag would
	// otherwise be posted as message text
	if !slices.Contains(args, "--") {
		for _, arg := range cmd.Args() {
			if len(arg) > 1 && strings.HasPrefix(arg, "-") {
				return fmt.Errorf("flag %s must precede the message text (use -- to send it literally)", arg)
			}
		}
	}

	text := strings.Join(cmd.Args(), " ")
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}
	if strings.TrimSpace(text) == "" {
		cmd.Usage()
		return fmt.Errorf("message text is required")
	}

	if path := coalesceString(*configFile, *configLong); path != "" {
		os.Setenv("HOOKLOG_CONFIG_FILE", path)
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newCommandLogger(*verbose)
	if err != nil {
		return err
	}
	defer logger.Shutdown(time.Second)

	ctx := context.Background()
	if *timeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*timeoutMS)*time.Millisecond)
		defer cancel()
	}

	handle, err := webhook.NewProvider(&cfg.Webhook, logger).Get(ctx)
	if err != nil {
		return err
	}

	direct := writer.NewDirect(handle, coalesceBool(*wait, *waitLong), logger)
	if _, err := direct.WriteContext(ctx, []byte(text)); err != nil {
		return fmt.Errorf("%s: %w", webhook.Classify(err).Message(), err)
	}

	if msg := direct.LastMessage(); msg != nil {
		fmt.Fprintf(sc.output, "Delivered message %s to channel %s\n", msg.ID, msg.ChannelID)
	} else {
		fmt.Fprintln(sc.output, "Delivered")
	}
	return nil
}

func (sc *SendCommand) Description() string {
	return "Deliver one message to the webhook and wait for the result"
}

func (sc *SendCommand) Help() string {
	return `Send Command - Deliver one message synchronously

Usage:
  hooklog send [options] <text...>
  echo "text" | hooklog send [options] -

Options go before the text. Text that starts with a dash follows "--".

The message is posted directly, without the forwarding queue, and the
command fails when the webhook rejects it. Credentials come from the usual
configuration sources; webhook.logging_enabled is not consulted.

Examples:
  hooklog send "deploy finished"
  hooklog send --wait "deploy finished"
`
}

// newCommandLogger logs webhook diagnostics to stderr only when asked
func newCommandLogger(verbose bool) (*log.Logger, error) {
	logger := log.NewLogger()
	if !verbose {
		return logger, logger.InitWithDefaults("disable_file=true", "enable_stdout=false", "level=255")
	}
	return logger, logger.InitWithDefaults(
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
		fmt.Sprintf("level=%d", int(log.LevelDebug)))
}

// coalesceString returns the first non-empty string from a list of arguments.
func coalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// coalesceBool returns true if any of the boolean arguments is true.
func coalesceBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
