package v1

import (
	"github.com/luscis/vpnsim/cmd/api"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/urfave/cli/v2"
)

type SA struct {
	Cmd
}

func (o SA) Url(prefix string) string {
	return prefix + "/api/sa"
}

func (o SA) Tmpl() string {
	return `# total {{ len . }}
{{ps -12 "SPI"}} {{ps -6 "Class"}} {{ps -12 "Tunnel"}} {{ps -28 "Proposal"}} {{ps -9 "Dir"}} {{ps -10 "Seq"}} {{ps -20 "Expires"}}
{{- range . }}
{{ps -12 (hex .Spi)}} {{ps -6 .Class}} {{ps -12 .TunnelID}} {{ps -28 .Proposal}} {{ps -9 .Direction}} {{pi -10 .Sequence}} {{ut .ExpiresAt}}
{{- end }}
`
}

func (o SA) List(c *cli.Context) error {
	url := o.Url(c.String("url")) + "?class=" + c.String("class")
	clt := o.NewHttp(c.String("token"))
	var items []schema.SA
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return o.Out(items, c.String("format"), o.Tmpl())
}

func (o SA) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:  "sa",
		Usage: "Security associations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "class", Usage: "ike or ipsec"},
		},
		Action: o.List,
	})
}

type Stats struct {
	Cmd
}

func (o Stats) Url(prefix string) string {
	return prefix + "/api/stats"
}

func (o Stats) Tmpl() string {
	return `Running     : {{ .Running }}
Active      : {{ .Active }}
Tunnels     : {{ range $k, $v := .Tunnels }}{{ $k }}={{ $v }} {{ end }}
Established : {{ .Established }}
IKE SAs     : {{ .IKESAs }}
IPSec SAs   : {{ .IPSecSAs }}
Encrypted   : {{ .Encrypted }}
Decrypted   : {{ .Decrypted }}
Negotiations: {{ .Negotiations }}
Rekeys      : {{ .Rekeys }}
`
}

func (o Stats) List(c *cli.Context) error {
	url := o.Url(c.String("url"))
	clt := o.NewHttp(c.String("token"))
	var item schema.Stats
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	return o.Out(item, c.String("format"), o.Tmpl())
}

func (o Stats) Active(c *cli.Context) error {
	url := c.String("url") + "/api/active"
	clt := o.NewHttp(c.String("token"))
	return clt.PutJSON(url, &schema.Active{Active: !c.Bool("off")}, nil)
}

func (o Stats) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:   "stats",
		Usage:  "Engine statistics",
		Action: o.List,
		Subcommands: []*cli.Command{
			{
				Name:  "active",
				Usage: "Flip the active flag",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "off"},
				},
				Action: o.Active,
			},
		},
	})
}

type Engine struct {
	Cmd
}

func (o Engine) Url(prefix, action string) string {
	url := prefix + "/api/engine"
	if action != "" {
		url += "/" + action
	}
	return url
}

func (o Engine) Tmpl() string {
	return `Running: {{ .running }}
Active : {{ .active }}
Uptime : {{ .uptime }}s
`
}

func (o Engine) List(c *cli.Context) error {
	url := o.Url(c.String("url"), "")
	clt := o.NewHttp(c.String("token"))
	item := map[string]interface{}{}
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	return o.Out(item, c.String("format"), o.Tmpl())
}

func (o Engine) action(name string) cli.ActionFunc {
	return func(c *cli.Context) error {
		url := o.Url(c.String("url"), name)
		clt := o.NewHttp(c.String("token"))
		return clt.PutJSON(url, nil, nil)
	}
}

func (o Engine) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:   "engine",
		Usage:  "Simulation engine",
		Action: o.List,
		Subcommands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start the engine",
				Action: o.action("start"),
			},
			{
				Name:   "stop",
				Usage:  "Stop the engine",
				Action: o.action("stop"),
			},
		},
	})
}

type Proposal struct {
	Cmd
}

func (o Proposal) Url(prefix string) string {
	return prefix + "/api/proposal"
}

func (o Proposal) Tmpl() string {
	return `# IKE
{{ps -30 "ID"}} {{ps -12 "Encryption"}} {{ps -10 "Integrity"}} {{ps -10 "DH"}} {{ps -8 "Lifetime"}}
{{- range .IKE }}
{{ps -30 .ID}} {{ps -12 .Encryption}} {{ps -10 .Integrity}} {{ps -10 .DHGroup}} {{pi -8 .Lifetime}}
{{- end }}
# IPSec
{{ps -30 "ID"}} {{ps -12 "Encryption"}} {{ps -10 "Integrity"}} {{ps -10 "PFS"}} {{ps -8 "Lifetime"}}
{{- range .IPSec }}
{{ps -30 .ID}} {{ps -12 .Encryption}} {{ps -10 .Integrity}} {{ps -10 .PFSGroup}} {{pi -8 .Lifetime}}
{{- end }}
# Endpoints
{{ps -12 "ID"}} {{ps -16 "Public"}} {{ps -18 "Network"}}
{{- range .Endpoints }}
{{ps -12 .ID}} {{ps -16 .PublicIP}} {{ps -18 .PrivateNetwork}}
{{- end }}
`
}

func (o Proposal) List(c *cli.Context) error {
	url := o.Url(c.String("url"))
	clt := o.NewHttp(c.String("token"))
	var item schema.Catalog
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	return o.Out(item, c.String("format"), o.Tmpl())
}

func (o Proposal) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:    "proposal",
		Aliases: []string{"catalog"},
		Usage:   "Known proposals and endpoints",
		Action:  o.List,
	})
}
