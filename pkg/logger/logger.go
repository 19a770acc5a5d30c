/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger wraps zap behind the small interface the rest of the
// dashboard logs through.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging contract used by every package.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	With(args ...interface{}) Logger
	Flush() error
}

type zapLogger struct {
	log *zap.SugaredLogger
}

// New returns a JSON logger writing to stdout, tagged with the service name.
func New(service, level string) Logger {
	return NewWithWriter(os.Stdout, service, level)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, service, level string) Logger {
	atom := zap.NewAtomicLevel()

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	log := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		atom,
	))

	atom.SetLevel(zap.InfoLevel)

	if level != "" {
		if err := atom.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			log.Error("invalid log level", zap.String("level", level))
		}
	}

	return &zapLogger{log: log.Sugar().With("svc", service)}
}

// Nop discards everything. Used by tests and as a nil fallback.
func Nop() Logger {
	return &zapLogger{log: zap.NewNop().Sugar()}
}

// OrNop returns l, or a discarding logger if l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}

	return l
}

func (l *zapLogger) Debugf(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l *zapLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l *zapLogger) With(args ...interface{}) Logger {
	return &zapLogger{log: l.log.With(args...)}
}

func (l *zapLogger) Flush() error {
	return l.log.Sync()
}
