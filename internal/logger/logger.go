package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log entry.
const ServiceName = "storefront-api"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// New creates the service logger. Production logs are JSON on stdout,
// everything else uses the colourised console encoder.
func New(env string) (*zap.Logger, error) {
	return build(env, zapcore.Lock(zapcore.AddSync(stdout)))
}

func build(env string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	var (
		encoderCfg zapcore.EncoderConfig
		encoder    zapcore.Encoder
		level      zapcore.Level
	)

	if env == "production" {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.MessageKey = "message"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
		level = zapcore.InfoLevel
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, sink, level)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(stderr))),
		zap.Fields(zap.String("service", ServiceName)),
	), nil
}

// Named returns a child logger for a component, e.g. "orders" or "email".
func Named(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component)
}
