package printers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/httpclient"
	"github.com/kbukum/inventory/registry"
)

// Remote fetches a printer's output from the inventory handler of another
// daemon at endpoint (host:port).
type Remote struct {
	client   *httpclient.Client
	endpoint string
	name     string
}

// NewRemote creates a Remote printer for the printer called name.
func NewRemote(client *httpclient.Client, endpoint, name string) *Remote {
	return &Remote{client: client, endpoint: endpoint, name: name}
}

// URL is the printer resource on the remote daemon.
func (r *Remote) URL() string {
	return fmt.Sprintf("%s://%s/inventory/printers/%s", r.client.Scheme(), r.endpoint, url.PathEscape(r.name))
}

// Print implements registry.Printer.
func (r *Remote) Print(ctx context.Context, mode registry.Mode, w io.Writer) error {
	if mode != registry.ModeText && mode != registry.ModeJSON {
		return errors.UnsupportedMode(r.name, string(mode))
	}

	resp, err := r.client.Do(ctx, httpclient.Request{
		URL:   r.URL(),
		Query: map[string]string{"mode": string(mode)},
	})
	if err != nil {
		return fmt.Errorf("remote printer %s at %s: %w", r.name, r.endpoint, err)
	}
	if mode == registry.ModeJSON && !json.Valid(resp.Body) {
		return fmt.Errorf("remote printer %s at %s: response is not valid JSON", r.name, r.endpoint)
	}
	_, err = w.Write(resp.Body)
	return err
}

var _ registry.Printer = (*Remote)(nil)
