package bootstrap

import (
	"github.com/kbukum/inventory/config"
)

// Config is the constraint for application configuration types. Structs
// embedding config.ServiceConfig satisfy it through promoted methods as long
// as they also define ApplyDefaults and Validate, or inherit them.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
