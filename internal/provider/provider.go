package provider

import "context"

// OutboundEmail is the message handed to the email-gateway collaborator.
// Addressing happens gateway-side; this core only supplies the user id.
type OutboundEmail struct {
	To      string
	Subject string
	Body    string
	Kind    string
}

// Provider is the outbound delivery port.
type Provider interface {
	Send(ctx context.Context, email OutboundEmail) (*ProviderResponse, error)
}

// ProviderResponse stores gateway call metadata for audit logging.
type ProviderResponse struct {
	StatusCode int
	Body       string
	MessageID  string
}
