// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hashing derives function shortnames and database prefixes.
package hashing

import "crypto/sha256"

const HashLen = sha256.Size

type Hash256 = [HashLen]byte

func ComputeHash256Array(buf []byte) Hash256 {
	return sha256.Sum256(buf)
}

func ComputeHash256(buf []byte) []byte {
	hash := sha256.Sum256(buf)
	return hash[:]
}
