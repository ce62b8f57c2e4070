// internal/component/env.go
package component

import (
	"go.uber.org/zap"

	"github.com/yanizio/askform/internal/config"
	"github.com/yanizio/askform/internal/theme"
)

// Env exposes process-wide resources to Components during Init.
type Env interface {
	Config() *config.Config
	Logger() *zap.SugaredLogger
	Theme() *theme.Theme
}

// StaticEnv is the plain Env used by serve and by tests.
type StaticEnv struct {
	Cfg *config.Config
	Log *zap.SugaredLogger
	Th  *theme.Theme
}

func (e StaticEnv) Config() *config.Config { return e.Cfg }
func (e StaticEnv) Theme() *theme.Theme    { return e.Th }

func (e StaticEnv) Logger() *zap.SugaredLogger {
	if e.Log == nil {
		return zap.S()
	}
	return e.Log
}
