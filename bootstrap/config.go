package bootstrap

import (
	"github.com/kbukum/transducekit/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods as
// long as it does not shadow ApplyDefaults or Validate without calling the
// embedded ones.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
