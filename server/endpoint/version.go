package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/inventory/version"
)

type versionResponse struct {
	Service string `json:"service"`
	version.Info
}

// Version answers with the daemon name and the build it runs.
func Version(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, versionResponse{Service: serviceName, Info: version.Get()})
	}
}
