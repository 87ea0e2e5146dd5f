package config

type Limit struct {
	Tunnel  int `json:"tunnel"`
	SA      int `json:"sa"`
	Event   int `json:"event"`
	Message int `json:"message"`
	Packet  int `json:"packet"`
}

func (l *Limit) Correct() {
	if l.Tunnel == 0 {
		l.Tunnel = 256
	}
	if l.SA == 0 {
		// two generations of an SA bundle per tunnel
		l.SA = l.Tunnel * 4
	}
	if l.Event == 0 {
		l.Event = 512
	}
	if l.Message == 0 {
		l.Message = 1024
	}
	if l.Packet == 0 {
		l.Packet = 256
	}
}
