// Package reply asks a language model to answer a child's bubble letter and
// falls back to a canned answer when the model is unavailable.
package reply

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by providers without credentials.
var ErrNotConfigured = errors.New("reply: provider not configured")

// Request is everything the model needs to write back.
type Request struct {
	CurrentName string
	EndLocation string
	SenderName  string
	Letter      string
}

// Response is the reply shown on arrival.
type Response struct {
	Location  string `json:"location"`
	ReplyText string `json:"replyText"`
	FunFact   string `json:"funFact"`
}

// Provider produces a reply. Implementations do not retry.
type Provider interface {
	Reply(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Fallback is the deterministic reply used when a provider fails.
func Fallback(req Request) Response {
	return Response{
		Location:  req.EndLocation,
		ReplyText: fmt.Sprintf("Hello %s! Your bubble made it all the way to %s! The water here is amazing. Thank you for your message!", req.SenderName, req.EndLocation),
		FunFact:   "The ocean covers more than 70% of the Earth's surface!",
	}
}

// Offline is a provider that always fails, so callers use the fallback.
type Offline struct{}

func (Offline) Reply(context.Context, Request) (Response, error) { return Response{}, ErrNotConfigured }
func (Offline) Name() string                                     { return "offline" }
