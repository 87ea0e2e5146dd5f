package models

import (
	"errors"
	"fmt"
)

type Code string

const (
	ProposalNotFound     Code = "ProposalNotFound"
	EndpointNotFound     Code = "EndpointNotFound"
	ProposalMismatch     Code = "ProposalMismatch"
	AuthFailure          Code = "AuthFailure"
	Timeout              Code = "Timeout"
	Aborted              Code = "Aborted"
	TunnelNotFound       Code = "TunnelNotFound"
	TunnelNotEstablished Code = "TunnelNotEstablished"
	UnknownSPI           Code = "UnknownSPI"
	SAExpired            Code = "SAExpired"
	SAExhausted          Code = "SAExhausted"
	ReplayDetected       Code = "ReplayDetected"
	AuthenticationFailed Code = "AuthenticationFailed"
	DPDTimeout           Code = "DPDTimeout"
	InvalidParams        Code = "InvalidParams"
	EngineStopped        Code = "EngineStopped"
)

// Error is a failure the engine reports to its callers. Two errors match
// with errors.Is when their codes are equal.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewError(code Code, format string, v ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, v...),
	}
}

var (
	ErrProposalNotFound     = &Error{Code: ProposalNotFound}
	ErrEndpointNotFound     = &Error{Code: EndpointNotFound}
	ErrProposalMismatch     = &Error{Code: ProposalMismatch}
	ErrAuthFailure          = &Error{Code: AuthFailure}
	ErrTimeout              = &Error{Code: Timeout}
	ErrAborted              = &Error{Code: Aborted}
	ErrTunnelNotFound       = &Error{Code: TunnelNotFound}
	ErrTunnelNotEstablished = &Error{Code: TunnelNotEstablished}
	ErrUnknownSPI           = &Error{Code: UnknownSPI}
	ErrSAExpired            = &Error{Code: SAExpired}
	ErrSAExhausted          = &Error{Code: SAExhausted}
	ErrReplayDetected       = &Error{Code: ReplayDetected}
	ErrAuthenticationFailed = &Error{Code: AuthenticationFailed}
	ErrDPDTimeout           = &Error{Code: DPDTimeout}
	ErrInvalidParams        = &Error{Code: InvalidParams}
	ErrEngineStopped        = &Error{Code: EngineStopped}
)

// CodeOf returns the code carried by err, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
