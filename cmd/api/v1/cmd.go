package v1

import (
	"os"
	"strings"

	"github.com/luscis/vpnsim/cmd/api"
	"github.com/urfave/cli/v2"
)

func Before(c *cli.Context) error {
	token := c.String("token")
	if token == "" {
		tokenFile := api.AdminTokenFile
		if data, err := os.ReadFile(tokenFile); err == nil {
			token = strings.TrimSpace(string(data))
		}
		_ = c.Set("token", token)
	}
	return nil
}

func After(c *cli.Context) error {
	return nil
}

func Commands(app *api.App) {
	app.After = After
	app.Before = Before
	Version{}.Commands(app)
	Log{}.Commands(app)
	Tunnel{}.Commands(app)
	Packet{}.Commands(app)
	Message{}.Commands(app)
	Event{}.Commands(app)
	SA{}.Commands(app)
	Stats{}.Commands(app)
	Engine{}.Commands(app)
	Proposal{}.Commands(app)
	Console{}.Commands(app)
}
