package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON in production, coloured console
// otherwise. The returned func flushes buffered entries.
func New(isProd bool) (*zap.Logger, func() error, error) {
	var (
		l   *zap.Logger
		err error
	)

	if isProd {
		l, err = zap.NewProduction()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	}
	if err != nil {
		return nil, nil, err
	}

	return l.With(zap.String("service", "fx-transfers")), l.Sync, nil
}
