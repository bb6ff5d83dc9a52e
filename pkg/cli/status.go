package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func statusCommand() *cli.Command {
	var (
		cfg    config
		asJSON bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print status as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, memoryFlags(&cfg)...)
	flags = append(flags, dispatchFlags(&cfg)...)

	return &cli.Command{
		Name:  "status",
		Usage: "Show agent health, mood, and memory statistics",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			status := ag.Status()

			if asJSON {
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(status); err != nil {
					return goerr.Wrap(err, "failed to encode status")
				}
				return nil
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Session:  %s\n", status.ActiveSession)
			fmt.Fprintf(w, "Mood:     %s (intensity %.2f, %d responses remaining)\n",
				status.Mood.Mood, status.Mood.Intensity, status.Mood.RemainingDuration)
			fmt.Fprintf(w, "Turns:    %d (errors: %d)\n", status.TotalTurns, status.ErrorCount)
			fmt.Fprintf(w, "Memory:   %d short-term, %d summaries, %d profiles, %d memorable moments\n",
				status.MemoryStats.ShortTermTurns, status.MemoryStats.LongTermSummaries,
				status.MemoryStats.UserProfiles, status.MemoryStats.MemorableSummaries)

			fmt.Fprintf(w, "Tools:\n")
			for _, th := range status.ToolHealth {
				fmt.Fprintf(w, "  %-20s %-12s calls=%d failures=%d success=%.0f%% avg=%dms\n",
					th.Name, th.Category, th.Calls, th.Failures, th.SuccessRate*100, th.AvgLatencyMS)
			}
			return nil
		},
	}
}
