// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, l := range []Level{Off, Fatal, Error, Warn, Info, Trace, Debug, Verbo} {
		parsed, err := ToLevel(l.String())
		require.NoError(err)
		require.Equal(l, parsed)

		b, err := json.Marshal(l)
		require.NoError(err)
		var decoded Level
		require.NoError(json.Unmarshal(b, &decoded))
		require.Equal(l, decoded)
	}
}

func TestToLevelCaseInsensitive(t *testing.T) {
	l, err := ToLevel("debug")
	require.NoError(t, err)
	require.Equal(t, Debug, l)
	require.Equal(t, "debug", l.LowerString())
}

func TestToLevelUnknown(t *testing.T) {
	_, err := ToLevel("loud")
	require.ErrorIs(t, err, ErrUnknownLevel)
	require.Equal(t, "LEVEL(9)", Level(9).String())
}
