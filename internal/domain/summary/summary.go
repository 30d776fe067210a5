// Package summary defines the contract with the AI prompt service that condenses a day's
// general announcement into a markdown bullet list, and the three failure kinds that the
// summary operations may return.
package summary

import "context"

// Request is the single input field sent to the AI prompt service.
type Request struct {
	AnnouncementText string `json:"announcementText" validate:"required"`
}

// Response is the single output field expected back.
type Response struct {
	Summary string `json:"summary" validate:"required"`
}

// Summarizer runs the summarization prompt. One request, one response, no streaming.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

// ConfigProvider reports whether the AI backend can be used. It is asked on every call
// because the credential may be added or revoked without a restart.
type ConfigProvider interface {
	// AIConfigured returns a ConfigurationError when no credential is available.
	AIConfigured() error
}
