// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/ava-labs/contractcodec/cmd/abitool/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "abitool failed: %v\n", err)
		os.Exit(1)
	}
}
