package logging

import "go.uber.org/zap"

// New returns a named child of the global logger for a long-lived component
func New(name string) *zap.SugaredLogger {
	return zap.S().Named(name)
}
