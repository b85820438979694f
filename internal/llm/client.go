package llm

import (
	"context"
	"errors"
	"net"
	"net/url"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// IsConnectivity reports whether err is a transport-level failure
// (DNS, route, TCP, TLS, timeout) rather than an API-level one.
// Callers use it to tell "try later, it's network" from "something
// else broke".
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
