package config

import (
	"fmt"
	"strings"

	"github.com/luscis/vpnsim/pkg/libol"
)

type Log struct {
	File    string `json:"file,omitempty"`
	Verbose int    `json:"level,omitempty" yaml:"level,omitempty"`
}

func (l *Log) Correct() {
	if l.Verbose == 0 {
		l.Verbose = libol.INFO
	}
}

type Http struct {
	Listen string `json:"listen,omitempty"`
	Cert   string `json:"cert,omitempty"`
	Key    string `json:"key,omitempty"`
	// Rate is the packet submissions per second the API admits.
	Rate int `json:"rate,omitempty"`
}

func (h *Http) Correct() {
	SetListen(&h.Listen, 10080)
	if h.Rate == 0 {
		h.Rate = 50
	}
}

func (h *Http) GetUrl() string {
	_, port := libol.GetHostPort(h.Listen)
	if port == "" {
		port = "10080"
	}
	if h.Cert != "" && h.Key != "" {
		return "https://127.0.0.1:" + port
	}
	return "http://127.0.0.1:" + port
}

func SetListen(listen *string, port int) {
	if *listen == "" {
		*listen = fmt.Sprintf("0.0.0.0:%d", port)
		return
	}
	values := strings.SplitN(*listen, ":", 2)
	if len(values) == 1 {
		*listen = fmt.Sprintf("%s:%d", values[0], port)
	}
}
