package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rook-computer/scratchcard/internal/card"
)

// Opener resolves an image location to a byte stream.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

type roleKey struct{}

// WithRole tags ctx with the layer being opened. Load does this for every
// Open call, so an Opener can tell layers apart even when they share a
// location.
func WithRole(ctx context.Context, role card.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFrom returns the layer role set by WithRole.
func RoleFrom(ctx context.Context) (card.Role, bool) {
	role, ok := ctx.Value(roleKey{}).(card.Role)
	return role, ok
}

// DefaultOpener reads local files and fetches http(s) URLs.
type DefaultOpener struct {
	Client *http.Client
}

func (o DefaultOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if isURL(location) {
		return o.fetch(ctx, location)
	}
	path := strings.TrimPrefix(location, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (o DefaultOpener) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
