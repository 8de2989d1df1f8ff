// Package zap adapts a *zap.Logger to clustercache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/clustercache"
)

type Logger struct{ L *zap.Logger }

var _ clustercache.Logger = Logger{}

// New tags every entry with component=clustercache.
func New(l *zap.Logger) Logger {
	return Logger{L: l.With(zap.String("component", "clustercache"))}
}

// NewProduction builds a JSON logger at level with ISO8601 timestamps.
func NewProduction(level zapcore.Level) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return Logger{}, err
	}
	return New(l), nil
}

func (z Logger) Debug(msg string, f clustercache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f clustercache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f clustercache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f clustercache.Fields) { z.L.Error(msg, zf(f)...) }

// zf emits fields in key order. Errors become zap error fields.
func zf(f clustercache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
