package v1

import (
	"fmt"

	"github.com/luscis/vpnsim/cmd/api"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/urfave/cli/v2"
	"golang.org/x/net/websocket"
)

type Message struct {
	Cmd
}

func (o Message) Url(prefix string) string {
	return prefix + "/api/message"
}

func (o Message) Tmpl() string {
	return `# total {{ len . }}
{{ps -20 "Time"}} {{ps -12 "Tunnel"}} {{ps -9 "Dir"}} {{ps -16 "Exchange"}} {{ps -4 "ID"}} {{ps -8 "Kind"}} {{ps -1 "Payloads"}}
{{- range . }}
{{ms .Timestamp}} {{ps -12 .TunnelID}} {{ps -9 .Direction}} {{ps -16 .MessageType}} {{pi -4 .MessageID}} {{ if .IsRequest }}{{ps -8 "request"}}{{ else }}{{ps -8 "response"}}{{ end }} {{ .Payloads }}
{{- end }}
`
}

func (o Message) List(c *cli.Context) error {
	url := fmt.Sprintf("%s?limit=%d&tunnel=%s", o.Url(c.String("url")), c.Int("limit"), c.String("id"))
	clt := o.NewHttp(c.String("token"))
	var items []schema.IKEMessage
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return o.Out(items, c.String("format"), o.Tmpl())
}

func (o Message) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:    "message",
		Aliases: []string{"msg"},
		Usage:   "IKE message log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "only this tunnel"},
			&cli.IntFlag{Name: "limit", Value: 50},
		},
		Action: o.List,
	})
}

type Event struct {
	Cmd
}

func (o Event) Url(prefix string) string {
	return prefix + "/api/event"
}

func (o Event) Tmpl() string {
	return `# total {{ len . }}
{{ps -20 "Time"}} {{ps -8 "Severity"}} {{ps -12 "Tunnel"}} {{ps -20 "Code"}} {{ps -1 "Message"}}
{{- range . }}
{{ms .Timestamp}} {{ps -8 .Severity}} {{ps -12 .TunnelID}} {{ps -20 .Code}} {{ .Message }}
{{- end }}
`
}

func (o Event) List(c *cli.Context) error {
	url := fmt.Sprintf("%s?limit=%d", o.Url(c.String("url")), c.Int("limit"))
	clt := o.NewHttp(c.String("token"))
	var items []schema.Event
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return o.Out(items, c.String("format"), o.Tmpl())
}

// Watch follows the event stream until the server closes it.
func (o Event) Watch(c *cli.Context) error {
	clt := o.NewHttp(c.String("token"))
	ws, err := clt.Dial(o.Url(c.String("url")) + "/stream")
	if err != nil {
		return err
	}
	defer ws.Close()
	for {
		var item schema.Event
		if err := websocket.JSON.Receive(ws, &item); err != nil {
			return nil
		}
		if err := o.Out([]schema.Event{item}, c.String("format"), o.Tmpl()); err != nil {
			return err
		}
	}
}

func (o Event) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:    "event",
		Aliases: []string{"ev"},
		Usage:   "Engine events",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 50},
		},
		Action: o.List,
		Subcommands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Follow new events",
				Action: o.Watch,
			},
		},
	})
}
