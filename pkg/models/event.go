package models

import (
	"fmt"
	"time"

	"github.com/luscis/vpnsim/pkg/schema"
)

type Severity string

const (
	SevInfo    Severity = "info"
	SevWarning Severity = "warning"
	SevError   Severity = "error"
)

const (
	Sent     = "sent"
	Received = "received"
)

func NewEvent(tunnel string, sev Severity, code Code, now time.Time, format string, v ...interface{}) schema.Event {
	return schema.Event{
		ID:        NewID("ev-"),
		TunnelID:  tunnel,
		Severity:  string(sev),
		Code:      string(code),
		Message:   fmt.Sprintf(format, v...),
		Timestamp: now.UnixMilli(),
	}
}

func NewMessage(tunnel, direction, typ string, id uint32, request bool, now time.Time, payloads ...string) schema.IKEMessage {
	return schema.IKEMessage{
		ID:          NewID("msg-"),
		TunnelID:    tunnel,
		Direction:   direction,
		MessageType: typ,
		MessageID:   id,
		IsRequest:   request,
		Payloads:    payloads,
		Timestamp:   now.UnixMilli(),
	}
}
