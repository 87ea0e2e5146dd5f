package v1

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/luscis/vpnsim/cmd/api"
	"github.com/urfave/cli/v2"
)

type Console struct {
	Cmd
}

func (o Console) completer(app *cli.App) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("quit"),
		readline.PcItem("help"),
		readline.PcItem("mode",
			readline.PcItem("vi"),
			readline.PcItem("emacs"),
		),
	}
	for _, cmd := range app.Commands {
		if cmd.Name == "console" || cmd.Name == "help" {
			continue
		}
		var subs []readline.PrefixCompleterInterface
		for _, sub := range cmd.Subcommands {
			subs = append(subs, readline.PcItem(sub.Name))
		}
		items = append(items, readline.PcItem(cmd.Name, subs...))
	}
	return readline.NewPrefixCompleter(items...)
}

func (o Console) Prompt(c *cli.Context) string {
	return fmt.Sprintf("[%s]> ", c.String("url"))
}

// global keeps the connection flags for every command run in the loop.
func (o Console) global(c *cli.Context) []string {
	return []string{
		c.App.Name,
		"--url", c.String("url"),
		"--token", c.String("token"),
		"--format", c.String("format"),
	}
}

func (o Console) Start(c *cli.Context) error {
	config := &readline.Config{
		Prompt:            o.Prompt(c),
		HistoryFile:       c.String("history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
		AutoComplete:      o.completer(c.App),
	}
	console, err := readline.NewEx(config)
	if err != nil {
		return err
	}
	defer console.Close()

	for {
		line, err := console.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch cmd := args[0]; cmd {
		case "exit", "quit":
			return nil
		case "console":
			continue
		case "mode":
			if len(args) > 1 {
				console.SetVimMode(args[1] == "vi")
			}
		case "?", "help":
			_ = c.App.Run(append(o.global(c), "help"))
		default:
			if err := c.App.Run(append(o.global(c), args...)); err != nil {
				fmt.Println(err)
			}
		}
	}
	return nil
}

func (o Console) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:  "console",
		Usage: "Interactive console",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Value: "/tmp/vpnctl.history"},
		},
		Action: o.Start,
	})
}
