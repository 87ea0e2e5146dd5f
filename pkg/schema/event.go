package schema

type IKEMessage struct {
	ID          string   `json:"id"`
	TunnelID    string   `json:"tunnel"`
	Direction   string   `json:"direction"`
	MessageType string   `json:"messageType"`
	MessageID   uint32   `json:"messageId"`
	IsRequest   bool     `json:"isRequest"`
	Payloads    []string `json:"payloads,omitempty"`
	Timestamp   int64    `json:"timestamp"`
}

type Event struct {
	ID        string `json:"id"`
	TunnelID  string `json:"tunnel,omitempty"`
	Severity  string `json:"severity"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type Stats struct {
	Tunnels      map[string]int `json:"tunnels"`
	Established  int            `json:"activeTunnels"`
	IKESAs       int            `json:"ikeSAs"`
	IPSecSAs     int            `json:"ipsecSAs"`
	Encrypted    int64          `json:"packetsEncrypted"`
	Decrypted    int64          `json:"packetsDecrypted"`
	Negotiations int64          `json:"negotiations"`
	Rekeys       int64          `json:"rekeys"`
	Running      bool           `json:"running"`
	Active       bool           `json:"active"`
}
