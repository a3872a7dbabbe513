// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	ConfigFileKey         = "config-file"
	LogsDirKey            = "log-dir"
	LogLevelKey           = "log-level"
	LogDisplayLevelKey    = "log-display-level"
	LogFormatKey          = "log-format"
	LogRotaterMaxSizeKey  = "log-rotater-max-size"
	LogRotaterMaxFilesKey = "log-rotater-max-files"
	LogRotaterMaxAgeKey   = "log-rotater-max-age"
	LogRotaterCompressKey = "log-rotater-compress-enabled"
	LogDisableDisplayKey  = "log-disable-display"
	DBDirKey              = "db-dir"
	OutputKey             = "output"
	BinderVersionKey      = "binder-version"
	ClientVersionKey      = "client-version"
)
