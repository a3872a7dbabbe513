// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config resolves the settings of abitool. Flags take precedence over
// the environment, which takes precedence over the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/contractcodec/abi"
	"github.com/ava-labs/contractcodec/utils/logging"
)

var (
	ErrUnknownOutput = errors.New("unknown output format")
	errBadVersion    = errors.New("version must be major.minor.patch with each part in [0, 255]")
)

// Output selects how commands render their results.
type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
)

type Config struct {
	Logging       logging.Config
	DBDir         string
	Output        Output
	BinderVersion abi.Version
	ClientVersion abi.Version
}

// BuildViper binds [fs] and the environment into a new viper instance and
// reads the config file, if one is named.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if v.IsSet(ConfigFileKey) && v.GetString(ConfigFileKey) != "" {
		v.SetConfigFile(os.ExpandEnv(v.GetString(ConfigFileKey)))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// GetConfig resolves every setting held by [v].
func GetConfig(v *viper.Viper) (Config, error) {
	loggingConfig, err := getLoggingConfig(v)
	if err != nil {
		return Config{}, err
	}

	output := Output(strings.ToLower(v.GetString(OutputKey)))
	switch output {
	case OutputText, OutputJSON:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}

	binderVersion, err := parseVersion(v.GetString(BinderVersionKey))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", BinderVersionKey, err)
	}
	clientVersion, err := parseVersion(v.GetString(ClientVersionKey))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", ClientVersionKey, err)
	}

	return Config{
		Logging:       loggingConfig,
		DBDir:         os.ExpandEnv(v.GetString(DBDirKey)),
		Output:        output,
		BinderVersion: binderVersion,
		ClientVersion: clientVersion,
	}, nil
}

func getLoggingConfig(v *viper.Viper) (logging.Config, error) {
	loggingConfig := logging.Config{}
	loggingConfig.Directory = os.ExpandEnv(v.GetString(LogsDirKey))

	var err error
	loggingConfig.LogLevel, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return loggingConfig, err
	}

	logDisplayLevel := v.GetString(LogLevelKey)
	if v.GetString(LogDisplayLevelKey) != "" {
		logDisplayLevel = v.GetString(LogDisplayLevelKey)
	}
	loggingConfig.DisplayLevel, err = logging.ToLevel(logDisplayLevel)
	if err != nil {
		return loggingConfig, err
	}

	loggingConfig.LogFormat, err = logging.ToFormat(v.GetString(LogFormatKey))
	if err != nil {
		return loggingConfig, err
	}

	loggingConfig.MaxSize = v.GetInt(LogRotaterMaxSizeKey)
	loggingConfig.MaxFiles = v.GetInt(LogRotaterMaxFilesKey)
	loggingConfig.MaxAge = v.GetInt(LogRotaterMaxAgeKey)
	loggingConfig.Compress = v.GetBool(LogRotaterCompressKey)
	loggingConfig.DisableWriterDisplaying = v.GetBool(LogDisableDisplayKey)
	return loggingConfig, nil
}

func parseVersion(s string) (abi.Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return abi.Version{}, fmt.Errorf("%w: got %q", errBadVersion, s)
	}
	var nums [3]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return abi.Version{}, fmt.Errorf("%w: got %q", errBadVersion, s)
		}
		nums[i] = uint8(n)
	}
	return abi.Version{
		Major: nums[0],
		Minor: nums[1],
		Patch: nums[2],
	}, nil
}
