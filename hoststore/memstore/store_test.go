// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memstore

import (
	"testing"

	"github.com/ava-labs/contractcodec/hoststore/storetest"
)

func TestInterface(t *testing.T) {
	for name, test := range storetest.Tests {
		t.Run(name, func(t *testing.T) {
			test(t, New())
		})
	}
}
