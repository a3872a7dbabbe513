// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meterstore

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/hoststore/memstore"
	"github.com/ava-labs/contractcodec/hoststore/storemock"
	"github.com/ava-labs/contractcodec/hoststore/storetest"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

func TestInterface(t *testing.T) {
	for name, test := range storetest.Tests {
		t.Run(name, func(t *testing.T) {
			s, err := New("", prometheus.NewRegistry(), memstore.New())
			require.NoError(t, err)

			test(t, s)
		})
	}
}

func TestDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	_, err := New("store", registry, memstore.New())
	require.NoError(t, err)

	_, err = New("store", registry, memstore.New())
	var alreadyRegistered prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &alreadyRegistered)
}

func TestObservations(t *testing.T) {
	require := require.New(t)

	s, err := New("store", prometheus.NewRegistry(), memstore.New())
	require.NoError(err)

	id, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(id, []byte{1, 2}, []byte{3, 4, 5}))
	_, err = s.SizeOf(id, []byte{1, 2})
	require.NoError(err)
	_, err = s.SizeOf(id, []byte{9})
	require.NoError(err)

	require.Equal(3, testutil.CollectAndCount(s.calls))
	require.Equal(3, testutil.CollectAndCount(s.size))
	require.Zero(testutil.ToFloat64(s.failures.WithLabelValues(upsertMethod)))
}

func TestFailuresCounted(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	errFailed := errors.New("host unreachable")

	inner := storemock.NewStore(ctrl)
	inner.EXPECT().Len(hoststore.TreeID(3)).Return(uint32(0), errFailed)
	inner.EXPECT().CursorNextSize(hoststore.TreeID(3), maybe.Nothing[[]byte]()).Return(hoststore.SizeAbsent, nil)

	s, err := New("store", prometheus.NewRegistry(), inner)
	require.NoError(err)

	_, err = s.Len(3)
	require.ErrorIs(err, errFailed)

	size, err := s.CursorNextSize(3, maybe.Nothing[[]byte]())
	require.NoError(err)
	require.Equal(hoststore.SizeAbsent, size)

	require.Equal(float64(1), testutil.ToFloat64(s.failures.WithLabelValues(lenMethod)))
	require.Zero(testutil.ToFloat64(s.failures.WithLabelValues(cursorNextSizeMethod)))
}
