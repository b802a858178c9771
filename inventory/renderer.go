package inventory

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/kbukum/inventory/registry"
)

// Catalog is the read side of the printer registry.
type Catalog interface {
	AllActive() []*registry.Descriptor
	ActiveSupporting(mode registry.Mode) []*registry.Descriptor
	ActiveByName(name string) (*registry.Descriptor, bool)
}

var _ Catalog = (*registry.Registry)(nil)

// PrinterError reports a printer that failed while a report was written.
type PrinterError struct {
	Printer string
	Mode    registry.Mode
	Err     error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("printer %s failed in %s mode: %v", e.Printer, e.Mode, e.Err)
}

func (e *PrinterError) Unwrap() error { return e.Err }

// Renderer writes reports over a set of printers. A failing printer does not
// abort the report; its error is written in place of its output and all
// failures are returned joined.
type Renderer struct{}

// WriteText writes every printer's text output under a "*** <Title>:" header.
func (Renderer) WriteText(ctx context.Context, w io.Writer, printers []*registry.Descriptor) error {
	var errs []error
	for i, d := range printers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "*** %s:\n", d.Title)
		if err := d.Handle.Print(ctx, registry.ModeText, w); err != nil {
			perr := &PrinterError{Printer: d.Name, Mode: registry.ModeText, Err: err}
			fmt.Fprintf(w, "\n!!! %v\n", perr)
			errs = append(errs, perr)
		}
	}
	return stderrors.Join(errs...)
}

// WriteJSON writes one JSON object keyed by printer name. Output that is not
// valid JSON is embedded as a string; a failure becomes {"error": "..."}.
func (Renderer) WriteJSON(ctx context.Context, w io.Writer, printers []*registry.Descriptor) error {
	var errs []error
	doc := make(map[string]json.RawMessage, len(printers))
	for _, d := range printers {
		raw, err := printJSON(ctx, d)
		if err != nil {
			perr := &PrinterError{Printer: d.Name, Mode: registry.ModeJSON, Err: err}
			errs = append(errs, perr)
			raw, _ = json.Marshal(map[string]string{"error": perr.Error()})
		}
		doc[d.Name] = raw
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return stderrors.Join(errs...)
}

// WriteZip writes an archive with <name>.txt and <name>.json per printer,
// depending on its modes, and the attachments of zip capable printers under
// <name>/.
func (Renderer) WriteZip(ctx context.Context, w io.Writer, printers []*registry.Descriptor) error {
	zw := zip.NewWriter(w)
	var errs []error

	for _, d := range printers {
		if d.Supports(registry.ModeText) {
			f, err := zw.Create(d.Name + ".txt")
			if err != nil {
				return err
			}
			if err := d.Handle.Print(ctx, registry.ModeText, f); err != nil {
				errs = append(errs, &PrinterError{Printer: d.Name, Mode: registry.ModeText, Err: err})
			}
		}
		if d.Supports(registry.ModeJSON) {
			raw, err := printJSON(ctx, d)
			if err != nil {
				errs = append(errs, &PrinterError{Printer: d.Name, Mode: registry.ModeJSON, Err: err})
			} else {
				f, err := zw.Create(d.Name + ".json")
				if err != nil {
					return err
				}
				if _, err := f.Write(raw); err != nil {
					return err
				}
			}
		}
		if attacher, ok := d.Handle.(registry.ZipAttacher); ok && d.Supports(registry.ModeZip) {
			if err := attacher.AddAttachments(ctx, zw, d.Name+"/"); err != nil {
				errs = append(errs, &PrinterError{Printer: d.Name, Mode: registry.ModeZip, Err: err})
			}
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	return stderrors.Join(errs...)
}

// printJSON captures a printer's JSON output. Output that is not valid JSON
// is returned as a JSON string.
func printJSON(ctx context.Context, d *registry.Descriptor) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := d.Handle.Print(ctx, registry.ModeJSON, &buf); err != nil {
		return nil, err
	}
	out := bytes.TrimSpace(buf.Bytes())
	if json.Valid(out) {
		return out, nil
	}
	return json.Marshal(buf.String())
}
