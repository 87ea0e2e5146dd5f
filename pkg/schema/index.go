package schema

type Index struct {
	Version  Version      `json:"version"`
	Uptime   int64        `json:"uptime"`
	Selected string       `json:"selected,omitempty"`
	Stats    Stats        `json:"stats"`
	Tunnels  []Tunnel     `json:"tunnels"`
	Messages []IKEMessage `json:"messages"`
	Packets  []ESPPacket  `json:"packets"`
	Events   []Event      `json:"events"`
}

type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type PeerState struct {
	Alive bool `json:"alive"`
}

type Select struct {
	ID string `json:"id"`
}

type Active struct {
	Active bool `json:"active"`
}
