// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import "time"

var (
	// Useful latency buckets

	NanosecondsBuckets = []float64{
		float64(100 * time.Nanosecond),
		float64(time.Microsecond),
		float64(10 * time.Microsecond),
		float64(100 * time.Microsecond),
		float64(time.Millisecond),
		float64(10 * time.Millisecond),
		float64(100 * time.Millisecond),
		float64(time.Second),
		// anything larger than a second will be bucketed together
	}

	// Useful bytes buckets

	BytesBuckets = []float64{
		1 << 4,
		1 << 6,
		1 << 8,
		1 << 10, // 1 KiB
		1 << 12,
		1 << 14,
		1 << 16,
		1 << 20, // 1 MiB
		// anything larger than 1 MiB will be bucketed together
	}
)

// AppendNamespace joins [prefix] and [suffix] the way prometheus namespaces
// are joined.
func AppendNamespace(prefix, suffix string) string {
	switch {
	case len(prefix) == 0:
		return suffix
	case len(suffix) == 0:
		return prefix
	default:
		return prefix + "_" + suffix
	}
}
