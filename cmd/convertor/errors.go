package main

import (
	"errors"
	"fmt"
	"net/http"
)

// Every pipeline stage returns one of the errors below instead of printing
// and exiting on its own; only the driver decides how failures are reported.

var (
	errUnsupportedScheme  = errors.New("only support http or https")
	errMissingHost        = errors.New("invalid url without host name")
	errMalformedURL       = errors.New("invalid url, please check again")
	errMissingInbounds    = errors.New("can't find any inbounds in target configuration")
	errExecutableNotFound = errors.New("sing-box still not found after install, check your PATH")
)

type urlParseError struct {
	err error
}

func (e *urlParseError) Error() string { return "url parse failed: " + e.err.Error() }

func (e *urlParseError) Unwrap() error { return e.err }

type fetchStatusError struct {
	status int
}

func (e *fetchStatusError) Error() string {
	if text := http.StatusText(e.status); text != "" {
		return fmt.Sprintf("fetch subscription: HTTP %d %s", e.status, text)
	}
	return fmt.Sprintf("fetch subscription: HTTP %d", e.status)
}

type malformedSubscriptionError struct {
	reason string
	err    error
}

func (e *malformedSubscriptionError) Error() string {
	if e.err != nil {
		return "malformed subscription: " + e.reason + ": " + e.err.Error()
	}
	return "malformed subscription: " + e.reason
}

func (e *malformedSubscriptionError) Unwrap() error { return e.err }

// index is -1 when the inbounds value itself is broken rather than one entry.
type malformedInboundError struct {
	index  int
	reason string
}

func (e *malformedInboundError) Error() string {
	if e.index < 0 {
		return "malformed inbounds: " + e.reason
	}
	return fmt.Sprintf("malformed inbound[%d]: %s", e.index, e.reason)
}

type configWriteError struct {
	path string
	err  error
}

func (e *configWriteError) Error() string { return "write " + e.path + ": " + e.err.Error() }

func (e *configWriteError) Unwrap() error { return e.err }

type installError struct {
	err error
}

func (e *installError) Error() string {
	return "failed to install sing-box, please try: brew install sing-box"
}

func (e *installError) Unwrap() error { return e.err }
