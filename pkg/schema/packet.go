package schema

// Packet is an application level packet before encapsulation.
type Packet struct {
	SourceIP   string `json:"sourceIP"`
	DestIP     string `json:"destIP"`
	SourcePort int    `json:"sourcePort"`
	DestPort   int    `json:"destPort"`
	Protocol   string `json:"protocol"`
	Data       string `json:"data,omitempty"`
}

type OuterHeader struct {
	SourceIP string `json:"sourceIP"`
	DestIP   string `json:"destIP"`
	Protocol string `json:"protocol"`
	UDPPort  int    `json:"udpPort,omitempty"`
}

type ESPHeader struct {
	Spi            uint32 `json:"spi"`
	SequenceNumber uint64 `json:"sequenceNumber"`
}

type ESPPayload struct {
	IV            string `json:"iv"`
	PaddingLength int    `json:"paddingLength"`
	NextHeader    int    `json:"nextHeader"`
	CipherData    string `json:"cipherData"`
}

type ESPAuth struct {
	ICV string `json:"icv"`
}

type ESPPacket struct {
	ID             string       `json:"id,omitempty"`
	TunnelID       string       `json:"tunnel,omitempty"`
	OuterHeader    *OuterHeader `json:"outerHeader,omitempty"`
	ESPHeader      ESPHeader    `json:"espHeader"`
	Payload        ESPPayload   `json:"payload"`
	Authentication ESPAuth      `json:"authentication"`
	OriginalPacket *Packet      `json:"originalPacket,omitempty"`
	Timestamp      int64        `json:"timestamp"`
}
