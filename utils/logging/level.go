// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

var ErrUnknownLevel = errors.New("unknown log level")

type Level zapcore.Level

// Levels below zapcore.DebugLevel extend zap downwards. Fatal maps onto
// zapcore.DPanicLevel so that it never exits the process.
const (
	Verbo Level = iota - 3
	Debug
	Trace
	Info
	Warn
	Error
	Fatal
	Off
)

var levelNames = map[Level]string{
	Verbo: "VERBO",
	Debug: "DEBUG",
	Trace: "TRACE",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
	Off:   "OFF",
}

// ToLevel parses the case-insensitive name of a level.
func ToLevel(l string) (Level, error) {
	upper := strings.ToUpper(l)
	for level, name := range levelNames {
		if name == upper {
			return level, nil
		}
	}
	return Off, fmt.Errorf("%w: %q", ErrUnknownLevel, l)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int8(l))
}

func (l Level) LowerString() string {
	return strings.ToLower(l.String())
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	var err error
	*l, err = ToLevel(str)
	return err
}
