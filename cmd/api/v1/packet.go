package v1

import (
	"encoding/json"
	"io"
	"os"

	"github.com/luscis/vpnsim/cmd/api"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/urfave/cli/v2"
)

type Packet struct {
	Cmd
}

func (o Packet) Url(prefix, action string) string {
	url := prefix + "/api/packet"
	if action != "" {
		url += "/" + action
	}
	return url
}

func (o Packet) Tmpl() string {
	return `# total {{ len . }}
{{ps -12 "Tunnel"}} {{ps -12 "SPI"}} {{ps -8 "Seq"}} {{ps -16 "Outer"}} {{ps -32 "Inner"}} {{ps -20 "Time"}}
{{- range . }}
{{ps -12 .TunnelID}} {{ps -12 (hex .ESPHeader.Spi)}} {{pi -8 .ESPHeader.SequenceNumber}} {{if .OuterHeader}}{{ps -16 .OuterHeader.Protocol}}{{else}}{{ps -16 "-"}}{{end}} {{if .OriginalPacket}}{{p2 -32 "%s>%s" .OriginalPacket.SourceIP .OriginalPacket.DestIP}}{{else}}{{ps -32 "-"}}{{end}} {{ms .Timestamp}}
{{- end }}
`
}

func (o Packet) PlainTmpl() string {
	return `{{ .Protocol }} {{ .SourceIP }}:{{ .SourcePort }} -> {{ .DestIP }}:{{ .DestPort }} {{ .Data }}
`
}

func (o Packet) List(c *cli.Context) error {
	url := o.Url(c.String("url"), "")
	url += "?limit=" + c.String("limit")
	clt := o.NewHttp(c.String("token"))
	var items []schema.ESPPacket
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return o.Out(items, c.String("format"), o.Tmpl())
}

func (o Packet) Send(c *cli.Context) error {
	p := &schema.Packet{
		SourceIP:   c.String("source"),
		DestIP:     c.String("dest"),
		SourcePort: c.Int("sport"),
		DestPort:   c.Int("dport"),
		Protocol:   c.String("protocol"),
		Data:       c.String("data"),
	}
	url := o.Url(c.String("url"), "")
	if id := c.String("id"); id != "" {
		url = Tunnel{}.Url(c.String("url"), id, "packet")
	}
	clt := o.NewHttp(c.String("token"))
	var item schema.ESPPacket
	if err := clt.PostJSON(url, p, &item); err != nil {
		return err
	}
	return o.Out(item, c.String("format"), "")
}

// Decrypt reads an ESP packet as JSON from a file, or stdin for "-".
func (o Packet) Decrypt(c *cli.Context) error {
	var data []byte
	var err error
	if file := c.String("file"); file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}
	esp := &schema.ESPPacket{}
	if err := json.Unmarshal(data, esp); err != nil {
		return err
	}
	url := o.Url(c.String("url"), "decrypt")
	clt := o.NewHttp(c.String("token"))
	var item schema.Packet
	if err := clt.PostJSON(url, esp, &item); err != nil {
		return err
	}
	return o.Out(item, c.String("format"), o.PlainTmpl())
}

func (o Packet) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:    "packet",
		Aliases: []string{"pkt"},
		Usage:   "ESP packets",
		Action:  o.List,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "limit", Value: "20"},
		},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "Display recent packets",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "limit", Value: "20"},
				},
				Action: o.List,
			},
			{
				Name:  "send",
				Usage: "Encapsulate a packet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "tunnel, or the selected one"},
					&cli.StringFlag{Name: "source", Value: "192.168.10.100"},
					&cli.StringFlag{Name: "dest", Value: "192.168.1.50"},
					&cli.IntFlag{Name: "sport", Value: 54321},
					&cli.IntFlag{Name: "dport", Value: 80},
					&cli.StringFlag{Name: "protocol", Value: "tcp"},
					&cli.StringFlag{Name: "data"},
				},
				Action: o.Send,
			},
			{
				Name:  "decrypt",
				Usage: "Decapsulate an ESP packet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Value: "-"},
				},
				Action: o.Decrypt,
			},
		},
	})
}
