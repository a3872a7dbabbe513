// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketsSorted(t *testing.T) {
	require.True(t, sort.Float64sAreSorted(NanosecondsBuckets))
	require.True(t, sort.Float64sAreSorted(BytesBuckets))
}

func TestAppendNamespace(t *testing.T) {
	tests := []struct {
		prefix   string
		suffix   string
		expected string
	}{
		{prefix: "abitool", suffix: "store", expected: "abitool_store"},
		{prefix: "", suffix: "store", expected: "store"},
		{prefix: "abitool", suffix: "", expected: "abitool"},
		{prefix: "", suffix: "", expected: ""},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require.Equal(t, test.expected, AppendNamespace(test.prefix, test.suffix))
		})
	}
}
