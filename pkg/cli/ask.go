package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg    config
		asJSON bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the full response as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, memoryFlags(&cfg)...)
	flags = append(flags, dispatchFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a single question and exit",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("question is required")
			}

			ctx = cfg.setupLogger(ctx)

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			resp := ag.ProcessTurn(ctx, question)

			if asJSON {
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return goerr.Wrap(err, "failed to encode response")
				}
			} else {
				fmt.Fprintf(c.Root().Writer, "%s\n", resp.Reply)
			}

			return ag.Flush(ctx)
		},
	}
}
