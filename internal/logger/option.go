package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// floorCore passes an entry on only when both its floor and the wrapped core
// accept the level. Third-party diagnostics use it to stay quieter than the
// service without ever being louder.
type floorCore struct {
	zapcore.Core

	// floor is the lowest level let through.
	floor zapcore.LevelEnabler
}

// Enabled implements zapcore.LevelEnabler.
func (c *floorCore) Enabled(l zapcore.Level) bool {
	return c.floor.Enabled(l) && c.Core.Enabled(l)
}

// Check implements zapcore.Core.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *floorCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With implements zapcore.Core.
//
//nolint:ireturn,nolintlint // zapcore.Core is the contract.
func (c *floorCore) With(fields []zapcore.Field) zapcore.Core {
	return &floorCore{
		Core:  c.Core.With(fields),
		floor: c.floor,
	}
}

// WithLevel raises the minimum level of a derived logger. Entries below floor
// are dropped; the global level still applies on top of it.
//
//nolint:ireturn,nolintlint // zap.Option is the contract.
func WithLevel(floor zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &floorCore{
			Core:  core,
			floor: floor,
		}
	})
}
