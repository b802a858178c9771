package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/inventory/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError answers with the status and body errors.Response derives
// from err.
func RespondWithError(c *gin.Context, err error) {
	c.JSON(errors.Response(err))
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
