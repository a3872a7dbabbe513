// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Format modes available
const (
	Plain Format = iota
	JSON
)

const termTimeFormat = "[01-02|15:04:05.000]"

var ErrUnknownFormat = errors.New("unknown format mode")

var defaultEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "timestamp",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	EncodeLevel:    levelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Format of logs
type Format int

// ToFormat chooses a format
func ToFormat(f string) (Format, error) {
	switch strings.ToUpper(f) {
	case "PLAIN":
		return Plain, nil
	case "JSON":
		return JSON, nil
	default:
		return Plain, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

func (f Format) MarshalJSON() ([]byte, error) {
	switch f {
	case Plain:
		return []byte(`"PLAIN"`), nil
	case JSON:
		return []byte(`"JSON"`), nil
	default:
		return nil, fmt.Errorf("unknown format mode: %d", f)
	}
}

func (f Format) ConsoleEncoder() zapcore.Encoder {
	if f == JSON {
		return zapcore.NewJSONEncoder(defaultEncoderConfig)
	}
	config := defaultEncoderConfig
	config.EncodeTime = termTimeEncoder
	config.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(config)
}

func (f Format) FileEncoder() zapcore.Encoder {
	if f == JSON {
		return zapcore.NewJSONEncoder(defaultEncoderConfig)
	}
	config := defaultEncoderConfig
	config.EncodeTime = termTimeEncoder
	config.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(config)
}

func termTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(termTimeFormat))
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(Level(l).String())
}
