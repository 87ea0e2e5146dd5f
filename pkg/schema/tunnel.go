package schema

type Peer struct {
	PSK           string `json:"psk,omitempty"`
	IKEProposal   string `json:"ikeProposal,omitempty" yaml:"ikeProposal,omitempty"`
	IPSecProposal string `json:"ipsecProposal,omitempty" yaml:"ipsecProposal,omitempty"`
	Unreachable   bool   `json:"unreachable,omitempty"`
	Alive         bool   `json:"alive"`
}

type Tunnel struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	LocalEndpoint  Endpoint `json:"localEndpoint"`
	RemoteEndpoint Endpoint `json:"remoteEndpoint"`
	IKEProposal    string   `json:"ikeProposal"`
	IPSecProposal  string   `json:"ipsecProposal"`
	DPDEnabled     bool     `json:"dpdEnabled"`
	NATTraversal   bool     `json:"natTraversal"`
	Status         string   `json:"status"`
	State          string   `json:"state"`
	Reason         string   `json:"reason,omitempty"`
	CreatedAt      int64    `json:"createdAt"`
	EstablishedAt  int64    `json:"establishedAt,omitempty"`
	RekeyCount     int      `json:"rekeyCount"`
	PacketsIn      int64    `json:"packetsIn"`
	PacketsOut     int64    `json:"packetsOut"`
	IKESpi         uint32   `json:"ikeSpi,omitempty"`
	InboundSpi     uint32   `json:"inboundSpi,omitempty"`
	OutboundSpi    uint32   `json:"outboundSpi,omitempty"`
	Selected       bool     `json:"selected"`
	Peer           Peer     `json:"peer"`
}

// TunnelParams is what a caller submits to create a tunnel. Endpoints are
// given either inline or as catalog preset ids.
type TunnelParams struct {
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Local          string    `json:"local,omitempty"`
	Remote         string    `json:"remote,omitempty"`
	LocalEndpoint  *Endpoint `json:"localEndpoint,omitempty"`
	RemoteEndpoint *Endpoint `json:"remoteEndpoint,omitempty"`
	IKEProposal    string    `json:"ikeProposal"`
	IPSecProposal  string    `json:"ipsecProposal"`
	PSK            string    `json:"psk"`
	DPDEnabled     *bool     `json:"dpdEnabled,omitempty"`
	NATTraversal   *bool     `json:"natTraversal,omitempty"`
	Peer           *Peer     `json:"peer,omitempty"`
}

type SA struct {
	Spi       uint32 `json:"spi"`
	Class     string `json:"class"`
	TunnelID  string `json:"tunnel"`
	Proposal  string `json:"proposal"`
	Direction string `json:"direction,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Sequence  uint64 `json:"sequence"`
	Mode      uint8  `json:"mode,omitempty"`
	Proto     uint8  `json:"proto,omitempty"`
	Source    string `json:"source,omitempty"`
	Dest      string `json:"destination,omitempty"`
}
