package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, memoryFlags(&cfg)...)
	flags = append(flags, dispatchFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with the stone",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "you> ",
				HistoryFile: filepath.Join(cfg.dataDir, "chat_history"),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "The Rosetta Stone awakens. Type 'exit' to leave, /help for commands.\n\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				input := strings.TrimSpace(line)
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " consulting the ages..."
				sp.Start()
				resp := ag.ProcessTurn(ctx, input)
				sp.Stop()

				fmt.Fprintf(c.Root().Writer, "\n%s\n", resp.Reply)
				if resp.Err != nil {
					logging.From(ctx).Warn("turn degraded", "error", resp.Err)
				}
				if resp.TimingMS > 0 {
					telemetry := fmt.Sprintf("(confidence %.2f, %dms", resp.Confidence, resp.TimingMS)
					if len(resp.ToolsUsed) > 0 {
						telemetry += ", tools: " + strings.Join(resp.ToolsUsed, ", ")
					}
					telemetry += ")"
					fmt.Fprintf(c.Root().Writer, "%s\n", telemetry)
				}
				fmt.Fprintln(c.Root().Writer)
			}

			if err := ag.Flush(ctx); err != nil {
				logging.From(ctx).Warn("failed to save memory", "error", err)
			}

			fmt.Fprintf(c.Root().Writer, "\nThe stone returns to silence.\n")
			return nil
		},
	}
}
