package printers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/registry"
	"github.com/kbukum/inventory/version"
)

// Build prints the version information of the running binary.
type Build struct{}

// Print implements registry.Printer.
func (Build) Print(_ context.Context, mode registry.Mode, w io.Writer) error {
	info := version.Get()
	switch mode {
	case registry.ModeJSON:
		return json.NewEncoder(w).Encode(info)
	case registry.ModeText:
		_, err := fmt.Fprintf(w, "Version: %s\nGo: %s\nPlatform: %s\nRelease: %t\n",
			info.Short(), info.GoVersion, info.Platform, info.Release)
		if err == nil && !info.BuildTime.IsZero() {
			_, err = fmt.Fprintf(w, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return err
	default:
		return errors.UnsupportedMode(KindBuild, string(mode))
	}
}

var _ registry.Printer = Build{}
