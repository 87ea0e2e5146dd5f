package v1

import (
	"github.com/luscis/vpnsim/cmd/api"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/urfave/cli/v2"
)

type Tunnel struct {
	Cmd
}

func (o Tunnel) Url(prefix, id, action string) string {
	url := prefix + "/api/tunnel"
	if id != "" {
		url += "/" + id
	}
	if action != "" {
		url += "/" + action
	}
	return url
}

func (o Tunnel) Tmpl() string {
	return `# total {{ len . }}
{{ps -12 "ID"}} {{ps -20 "Name"}} {{ps -15 "Local"}} {{ps -15 "Remote"}} {{ps -12 "Status"}} {{ps -12 "Inbound"}} {{ps -12 "Outbound"}} {{ps -6 "Rekey"}} {{ps -8 "In"}} {{ps -8 "Out"}}
{{- range . }}
{{ps -12 .ID}} {{ps -20 .Name}} {{ps -15 .LocalEndpoint.PublicIP}} {{ps -15 .RemoteEndpoint.PublicIP}} {{ if .Selected }}*{{ else }} {{ end }}{{ps -11 .Status}} {{ps -12 (hex .InboundSpi)}} {{ps -12 (hex .OutboundSpi)}} {{pi -6 .RekeyCount}} {{pi -8 .PacketsIn}} {{pi -8 .PacketsOut}}
{{- end }}
`
}

func (o Tunnel) List(c *cli.Context) error {
	url := o.Url(c.String("url"), "", "")
	clt := o.NewHttp(c.String("token"))
	var items []schema.Tunnel
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return o.Out(items, c.String("format"), o.Tmpl())
}

func (o Tunnel) Get(c *cli.Context) error {
	url := o.Url(c.String("url"), c.String("id"), "")
	clt := o.NewHttp(c.String("token"))
	var item schema.Tunnel
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	return o.Out([]schema.Tunnel{item}, c.String("format"), o.Tmpl())
}

func (o Tunnel) Add(c *cli.Context) error {
	params := &schema.TunnelParams{
		Name:          c.String("name"),
		Type:          c.String("type"),
		Local:         c.String("local"),
		Remote:        c.String("remote"),
		IKEProposal:   c.String("ike"),
		IPSecProposal: c.String("ipsec"),
		PSK:           c.String("psk"),
	}
	if c.IsSet("dpd") {
		value := c.Bool("dpd")
		params.DPDEnabled = &value
	}
	if c.IsSet("nat") {
		value := c.Bool("nat")
		params.NATTraversal = &value
	}
	if c.IsSet("peer-psk") || c.Bool("unreachable") {
		params.Peer = &schema.Peer{
			PSK:         c.String("peer-psk"),
			Unreachable: c.Bool("unreachable"),
			Alive:       true,
		}
	}
	url := o.Url(c.String("url"), "", "")
	clt := o.NewHttp(c.String("token"))
	var item schema.Tunnel
	if err := clt.PostJSON(url, params, &item); err != nil {
		return err
	}
	return o.Out([]schema.Tunnel{item}, c.String("format"), o.Tmpl())
}

func (o Tunnel) Remove(c *cli.Context) error {
	url := o.Url(c.String("url"), c.String("id"), "")
	clt := o.NewHttp(c.String("token"))
	return clt.DeleteJSON(url, nil, nil)
}

func (o Tunnel) action(name string) cli.ActionFunc {
	return func(c *cli.Context) error {
		url := o.Url(c.String("url"), c.String("id"), name)
		clt := o.NewHttp(c.String("token"))
		var item schema.Tunnel
		if err := clt.PutJSON(url, nil, &item); err != nil {
			return err
		}
		return o.Out([]schema.Tunnel{item}, c.String("format"), o.Tmpl())
	}
}

func (o Tunnel) Peer(c *cli.Context) error {
	url := o.Url(c.String("url"), c.String("id"), "peer")
	clt := o.NewHttp(c.String("token"))
	state := &schema.PeerState{Alive: !c.Bool("down")}
	var item schema.Tunnel
	if err := clt.PutJSON(url, state, &item); err != nil {
		return err
	}
	return o.Out([]schema.Tunnel{item}, c.String("format"), o.Tmpl())
}

func (o Tunnel) Commands(app *api.App) {
	id := &cli.StringFlag{Name: "id", Required: true}
	app.Command(&cli.Command{
		Name:    "tunnel",
		Aliases: []string{"tun"},
		Usage:   "Simulated tunnels",
		Action:  o.List,
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "Display all tunnels",
				Aliases: []string{"ls"},
				Action:  o.List,
			},
			{
				Name:   "get",
				Usage:  "Display a tunnel",
				Flags:  []cli.Flag{id},
				Action: o.Get,
			},
			{
				Name:  "add",
				Usage: "Create and negotiate a tunnel",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "type", Value: "site-to-site"},
					&cli.StringFlag{Name: "local", Required: true},
					&cli.StringFlag{Name: "remote", Required: true},
					&cli.StringFlag{Name: "ike", Value: "ike-aes256-sha256-modp2048"},
					&cli.StringFlag{Name: "ipsec", Value: "esp-aes256-sha256-modp2048"},
					&cli.StringFlag{Name: "psk", Required: true},
					&cli.StringFlag{Name: "peer-psk"},
					&cli.BoolFlag{Name: "dpd"},
					&cli.BoolFlag{Name: "nat"},
					&cli.BoolFlag{Name: "unreachable"},
				},
				Action: o.Add,
			},
			{
				Name:    "remove",
				Usage:   "Delete a tunnel",
				Aliases: []string{"rm"},
				Flags:   []cli.Flag{id},
				Action:  o.Remove,
			},
			{
				Name:   "connect",
				Usage:  "Negotiate a down tunnel",
				Flags:  []cli.Flag{id},
				Action: o.action("connect"),
			},
			{
				Name:   "disconnect",
				Usage:  "Tear down a tunnel",
				Flags:  []cli.Flag{id},
				Action: o.action("disconnect"),
			},
			{
				Name:   "rekey",
				Usage:  "Replace the SAs of a tunnel",
				Flags:  []cli.Flag{id},
				Action: o.action("rekey"),
			},
			{
				Name:   "dpd",
				Usage:  "Probe the peer now",
				Flags:  []cli.Flag{id},
				Action: o.action("dpd"),
			},
			{
				Name:   "select",
				Usage:  "Select the tunnel for traffic",
				Flags:  []cli.Flag{id},
				Action: o.action("select"),
			},
			{
				Name:  "peer",
				Usage: "Mark the peer alive or down",
				Flags: []cli.Flag{
					id,
					&cli.BoolFlag{Name: "down"},
				},
				Action: o.Peer,
			},
		},
	})
}
