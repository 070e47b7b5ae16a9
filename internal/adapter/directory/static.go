// Package directory is a stand-in for the external directory
// collaborator: it points customers at the public shop listing.
package directory

import (
	"context"

	"github.com/nanaosei-dev/chatvendor/internal/interfaces"
)

type static struct {
	url string
}

func NewStatic(url string) interfaces.Directory {
	return &static{url: url}
}

func (s *static) Listing(ctx context.Context) string {
	if s.url == "" {
		return "Browse our registered shops and tap one to start chatting."
	}
	return "Browse our registered shops here: " + s.url
}
