// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to the upper-cased key of every setting that may be
// given through the environment, e.g. ABITOOL_LOG_LEVEL.
const EnvPrefix = "abitool"

var (
	defaultDataDir = filepath.Join(os.ExpandEnv("$HOME"), ".abitool")
	defaultLogDir  = filepath.Join(defaultDataDir, "logs")
	defaultDBDir   = filepath.Join(defaultDataDir, "db")
)

// AddFlags registers every setting on [fs].
func AddFlags(fs *pflag.FlagSet) {
	// Config file
	fs.String(ConfigFileKey, "", "Specifies a JSON or YAML config file")

	// Logging
	fs.String(LogsDirKey, defaultLogDir, "Logging directory")
	fs.String(LogLevelKey, "info", "The log level. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log display level. If left blank, will inherit the value of log-level. Otherwise, should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogFormatKey, "plain", "The structure of log format. Should be one of {plain, json}")
	fs.Int(LogRotaterMaxSizeKey, 8, "The maximum file size in megabytes of the log file before it gets rotated")
	fs.Int(LogRotaterMaxFilesKey, 7, "The maximum number of old log files to retain. 0 means retain all old log files")
	fs.Int(LogRotaterMaxAgeKey, 0, "The maximum number of days to retain old log files based on the timestamp encoded in their filename. 0 means retain all old log files")
	fs.Bool(LogRotaterCompressKey, false, "Enables the compression of rotated log files through gzip")
	fs.Bool(LogDisableDisplayKey, false, "Disables displaying logs on stdout")

	// Storage
	fs.String(DBDirKey, defaultDBDir, "Path to the leveldb directory holding contract trees")

	// Output
	fs.String(OutputKey, "text", "Output format of commands. Should be one of {text, json}")

	// ABI
	fs.String(BinderVersionKey, "10.0.0", "Binder format version written into generated ABI descriptors")
	fs.String(ClientVersionKey, "5.4.0", "Client format version written into generated ABI descriptors")
}
