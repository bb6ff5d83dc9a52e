package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg  config
		days int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "days",
			Usage:       "How many days back to show",
			Value:       1,
			Destination: &days,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded conversation turns",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			since := time.Now().AddDate(0, 0, -int(days))
			turns, err := repo.ListTurns(ctx, since)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if len(turns) == 0 {
				fmt.Fprintf(w, "No turns recorded since %s\n", since.Format("2006-01-02"))
				return nil
			}

			for _, turn := range turns {
				fmt.Fprintf(w, "[%s] %s\n", turn.Timestamp.Format("2006-01-02 15:04:05"), turn.UserID)
				fmt.Fprintf(w, "  user:  %s\n", turn.UserInput)
				fmt.Fprintf(w, "  stone: %s\n", turn.AgentReply)
				if len(turn.ToolsUsed) > 0 {
					fmt.Fprintf(w, "  tools: %s\n", strings.Join(turn.ToolsUsed, ", "))
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
}
