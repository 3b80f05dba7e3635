package logging

import (
	"github.com/festpos/api/internal/enum"
	"go.uber.org/zap"
)

// New builds the application logger. Production environments get the JSON
// encoder at info level, everything else the console development logger.
func New(env string) (*zap.Logger, error) {
	if env == enum.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
