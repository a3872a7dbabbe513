// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hoststore

//go:generate go run github.com/golang/mock/mockgen@v1.6.0 -package=storemock -destination=storemock/store.go -mock_names=Store=Store . Store
