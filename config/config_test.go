// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/abi"
	"github.com/ava-labs/contractcodec/utils/logging"
)

func configFromArgs(t *testing.T, args ...string) (Config, error) {
	flags := pflag.NewFlagSet("abitool", pflag.ContinueOnError)
	AddFlags(flags)
	require.NoError(t, flags.Parse(args))

	v, err := BuildViper(flags)
	if err != nil {
		return Config{}, err
	}
	return GetConfig(v)
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	config, err := configFromArgs(t)
	require.NoError(err)
	require.Equal(logging.Info, config.Logging.LogLevel)
	require.Equal(logging.Info, config.Logging.DisplayLevel)
	require.Equal(logging.Plain, config.Logging.LogFormat)
	require.Equal(8, config.Logging.MaxSize)
	require.Equal(7, config.Logging.MaxFiles)
	require.Equal(defaultLogDir, config.Logging.Directory)
	require.Equal(defaultDBDir, config.DBDir)
	require.Equal(OutputText, config.Output)
	require.Equal(abi.Version{Major: 10}, config.BinderVersion)
	require.Equal(abi.Version{Major: 5, Minor: 4}, config.ClientVersion)
}

func TestFlags(t *testing.T) {
	require := require.New(t)

	dbDir := t.TempDir()
	config, err := configFromArgs(t,
		"--log-level=debug",
		"--log-display-level=warn",
		"--log-format=json",
		"--log-disable-display",
		"--output=JSON",
		"--db-dir="+dbDir,
		"--binder-version=9.1.2",
	)
	require.NoError(err)
	require.Equal(logging.Debug, config.Logging.LogLevel)
	require.Equal(logging.Warn, config.Logging.DisplayLevel)
	require.Equal(logging.JSON, config.Logging.LogFormat)
	require.True(config.Logging.DisableWriterDisplaying)
	require.Equal(OutputJSON, config.Output)
	require.Equal(dbDir, config.DBDir)
	require.Equal(abi.Version{Major: 9, Minor: 1, Patch: 2}, config.BinderVersion)
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"log-level": "error",
		"log-format": "json",
		"db-dir": "/data/trees"
	}`), 0o600))

	config, err := configFromArgs(t, "--config-file="+path, "--log-level=verbo")
	require.NoError(err)

	// Flags win over the file.
	require.Equal(logging.Verbo, config.Logging.LogLevel)
	require.Equal(logging.JSON, config.Logging.LogFormat)
	require.Equal("/data/trees", config.DBDir)
}

func TestEnvironment(t *testing.T) {
	require := require.New(t)

	t.Setenv("ABITOOL_OUTPUT", "json")
	t.Setenv("ABITOOL_LOG_LEVEL", "off")

	config, err := configFromArgs(t)
	require.NoError(err)
	require.Equal(OutputJSON, config.Output)
	require.Equal(logging.Off, config.Logging.LogLevel)
	require.Equal(logging.Off, config.Logging.DisplayLevel)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{
			name:        "log level",
			args:        []string{"--log-level=loud"},
			expectedErr: logging.ErrUnknownLevel,
		},
		{
			name:        "display level",
			args:        []string{"--log-display-level=quiet"},
			expectedErr: logging.ErrUnknownLevel,
		},
		{
			name:        "log format",
			args:        []string{"--log-format=xml"},
			expectedErr: logging.ErrUnknownFormat,
		},
		{
			name:        "output",
			args:        []string{"--output=yaml"},
			expectedErr: ErrUnknownOutput,
		},
		{
			name:        "short version",
			args:        []string{"--client-version=5.4"},
			expectedErr: errBadVersion,
		},
		{
			name:        "wide version",
			args:        []string{"--binder-version=10.256.0"},
			expectedErr: errBadVersion,
		},
		{
			name:        "missing config file",
			args:        []string{"--config-file=" + filepath.Join(os.TempDir(), "abitool-missing", "config.json")},
			expectedErr: fs.ErrNotExist,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := configFromArgs(t, test.args...)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}
