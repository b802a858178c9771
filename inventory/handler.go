package inventory

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/registry"
	"github.com/kbukum/inventory/server"
	"github.com/kbukum/inventory/validation"
)

// PrinterView is the listing entry of an active printer.
type PrinterView struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Rank     int      `json:"rank"`
	Identity uint64   `json:"identity"`
	Modes    []string `json:"modes"`
}

func viewOf(d *registry.Descriptor) PrinterView {
	modes := make([]string, len(d.Capabilities))
	for i, m := range d.Capabilities {
		modes[i] = string(m)
	}
	return PrinterView{
		Name:     d.Name,
		Title:    d.Title,
		Rank:     d.Rank,
		Identity: uint64(d.Identity),
		Modes:    modes,
	}
}

// Handler serves the inventory over HTTP.
type Handler struct {
	catalog  Catalog
	renderer Renderer
	log      *logger.Logger
}

// NewHandler creates a Handler reading from catalog.
func NewHandler(catalog Catalog, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{catalog: catalog, log: log.WithComponent("inventory")}
}

// Register mounts the inventory routes on r:
//
//	GET /inventory                      active printers
//	GET /inventory/printers/:name?mode= one printer's output (text or json)
//	GET /inventory/report.txt           text report
//	GET /inventory/report.json          JSON report
//	GET /inventory/report.zip           zip report
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/inventory")
	g.GET("", h.list)
	g.GET("/printers/:name", h.printer)
	g.GET("/report.txt", h.textReport)
	g.GET("/report.json", h.jsonReport)
	g.GET("/report.zip", h.zipReport)
}

func (h *Handler) list(c *gin.Context) {
	active := h.catalog.AllActive()
	views := make([]PrinterView, 0, len(active))
	for _, d := range active {
		views = append(views, viewOf(d))
	}
	server.RespondOK(c, views)
}

func (h *Handler) printer(c *gin.Context) {
	name := c.Param("name")
	mode := c.DefaultQuery("mode", string(registry.ModeText))

	v := validation.New().OneOf("mode", mode, []string{string(registry.ModeText), string(registry.ModeJSON)})
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	d, ok := h.catalog.ActiveByName(name)
	if !ok {
		server.RespondWithError(c, errors.NotFound("printer", name))
		return
	}
	if !d.Supports(registry.Mode(mode)) {
		server.RespondWithError(c, errors.UnsupportedMode(name, mode))
		return
	}

	var buf bytes.Buffer
	if err := d.Handle.Print(c.Request.Context(), registry.Mode(mode), &buf); err != nil {
		h.log.Warn("Printer failed", logger.Fields(logger.FieldPrinter, name, logger.FieldError, err.Error()))
		server.RespondWithError(c, errors.ExternalServiceError("printer "+name, err))
		return
	}
	c.Data(http.StatusOK, contentType(registry.Mode(mode)), buf.Bytes())
}

func (h *Handler) textReport(c *gin.Context) {
	h.report(c, registry.ModeText, "", h.catalog.ActiveSupporting(registry.ModeText), h.renderer.WriteText)
}

func (h *Handler) jsonReport(c *gin.Context) {
	h.report(c, registry.ModeJSON, "", h.catalog.ActiveSupporting(registry.ModeJSON), h.renderer.WriteJSON)
}

func (h *Handler) zipReport(c *gin.Context) {
	h.report(c, registry.ModeZip, "inventory.zip", h.catalog.AllActive(), h.renderer.WriteZip)
}

type writeFunc func(ctx context.Context, w io.Writer, printers []*registry.Descriptor) error

// report renders a full report. Printer failures are logged and already
// embedded in the output, so they do not change the status.
func (h *Handler) report(c *gin.Context, mode registry.Mode, attachment string, printers []*registry.Descriptor, write writeFunc) {
	var buf bytes.Buffer
	if err := write(c.Request.Context(), &buf, printers); err != nil {
		h.log.Warn("Inventory report incomplete", logger.Fields(
			logger.FieldModes, string(mode),
			logger.FieldError, err.Error(),
		))
	}
	if attachment != "" {
		c.Header("Content-Disposition", `attachment; filename="`+attachment+`"`)
	}
	c.Data(http.StatusOK, contentType(mode), buf.Bytes())
}

func contentType(mode registry.Mode) string {
	switch mode {
	case registry.ModeJSON:
		return "application/json; charset=utf-8"
	case registry.ModeZip:
		return "application/zip"
	default:
		return "text/plain; charset=utf-8"
	}
}
