package command

import (
	"context"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/cli/repl"
)

// runCommand sends the arguments as one command, or starts the REPL when
// there are none.
func runCommand(c *cli.Context) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}
	mgr := connection.NewManager(connection.Options{
		Addr:     s.Addr,
		Password: s.Password,
		Timeout:  s.Timeout,
	})
	defer mgr.Disconnect()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	send := func(ctx context.Context, args []string) error {
		reply, err := mgr.Do(ctx, args...)
		if err != nil {
			return err
		}
		return output.FormatReply(c.App.Writer, reply, s.Raw)
	}

	if c.NArg() > 0 {
		return send(ctx, c.Args().Slice())
	}

	r := repl.New(send,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(s.Addr),
		repl.WithHistory(repl.NewHistory(s.HistoryFile, 0)),
	)
	return r.Run(ctx)
}
