package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names accepted by New.
const (
	BackendZap  = "zap"
	BackendSlog = "slog"
)

// New builds a JSON logger writing to w at the given level
// ("debug", "info", "warn", "error").
func New(backend, level string, w io.Writer) (Logger, error) {
	switch backend {
	case BackendZap, "":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			lvl,
		)
		return NewZapLogger(zap.New(core)), nil

	case BackendSlog:
		return NewSlogJSON(w, level)

	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
