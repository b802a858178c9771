package registry

import (
	"archive/zip"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Identity is the registration sequence number of a candidate.
// Lower identities were registered earlier.
type Identity uint64

// Mode is an output format a printer can produce.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeZip  Mode = "zip"
)

// Modes lists every known mode.
var Modes = []Mode{ModeText, ModeJSON, ModeZip}

// ParseMode matches s case-insensitively against the known modes.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Modes, m) {
		return m, true
	}
	return "", false
}

// Printer is the capability handle of a candidate.
type Printer interface {
	Print(ctx context.Context, mode Mode, w io.Writer) error
}

// PrinterFunc adapts a function to Printer.
type PrinterFunc func(ctx context.Context, mode Mode, w io.Writer) error

// Print calls f.
func (f PrinterFunc) Print(ctx context.Context, mode Mode, w io.Writer) error {
	return f(ctx, mode, w)
}

// ZipAttacher is implemented by printers that contribute extra files to a
// zip report. Entries must be created below prefix.
type ZipAttacher interface {
	AddAttachments(ctx context.Context, zw *zip.Writer, prefix string) error
}

// Descriptor is a validated, immutable candidate registration.
type Descriptor struct {
	Identity     Identity
	Name         string
	Title        string
	Rank         int
	Capabilities []Mode
	Handle       Printer
}

// Supports reports whether the printer can produce mode.
func (d *Descriptor) Supports(mode Mode) bool {
	return slices.Contains(d.Capabilities, mode)
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s#%d(rank=%d)", d.Name, d.Identity, d.Rank)
}

// Compare is the election order: higher rank first, then lower identity.
// It returns a negative number when a is preferred over b.
func Compare(a, b *Descriptor) int {
	if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
		return c
	}
	return cmp.Compare(a.Identity, b.Identity)
}
