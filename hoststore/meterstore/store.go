// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meterstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/maybe"
	"github.com/ava-labs/contractcodec/utils/metric"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

const (
	createMethod         = "create"
	fetchMethod          = "fetch"
	upsertMethod         = "upsert"
	deleteMethod         = "delete"
	sizeOfMethod         = "size_of"
	cursorNextMethod     = "cursor_next"
	cursorNextSizeMethod = "cursor_next_size"
	lenMethod            = "len"
)

var (
	_ hoststore.Store = (*Store)(nil)

	methodLabels = []string{"method"}
)

// Store is a wrapper around a store that tracks the duration of every call
// and the size of every payload crossing it.
type Store struct {
	store hoststore.Store

	calls    *prometheus.HistogramVec
	size     *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// New returns a new store with metrics registered under [namespace].
func New(
	namespace string,
	registerer prometheus.Registerer,
	store hoststore.Store,
) (*Store, error) {
	s := &Store{
		store: store,
		calls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calls",
				Help:      "time (in ns) of a host store call",
				Buckets:   metric.NanosecondsBuckets,
			},
			methodLabels,
		),
		size: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "size",
				Help:      "size (in bytes) of the data passed to or from the host store",
				Buckets:   metric.BytesBuckets,
			},
			methodLabels,
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures",
				Help:      "number of host store calls that returned an error",
			},
			methodLabels,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(s.calls),
		registerer.Register(s.size),
		registerer.Register(s.failures),
	)
	return s, errs.Err
}

func (s *Store) Create() (hoststore.TreeID, error) {
	start := time.Now()
	id, err := s.store.Create()
	s.observe(createMethod, start, 0, err)
	return id, err
}

func (s *Store) Fetch(id hoststore.TreeID, key []byte, dst []byte) (bool, error) {
	start := time.Now()
	found, err := s.store.Fetch(id, key, dst)
	s.observe(fetchMethod, start, len(key)+len(dst), err)
	return found, err
}

func (s *Store) Upsert(id hoststore.TreeID, key []byte, value []byte) error {
	start := time.Now()
	err := s.store.Upsert(id, key, value)
	s.observe(upsertMethod, start, len(key)+len(value), err)
	return err
}

func (s *Store) Delete(id hoststore.TreeID, key []byte) error {
	start := time.Now()
	err := s.store.Delete(id, key)
	s.observe(deleteMethod, start, len(key), err)
	return err
}

func (s *Store) SizeOf(id hoststore.TreeID, key []byte) (uint32, error) {
	start := time.Now()
	size, err := s.store.SizeOf(id, key)
	s.observe(sizeOfMethod, start, len(key), err)
	return size, err
}

func (s *Store) CursorNext(id hoststore.TreeID, prev maybe.Maybe[[]byte], dst []byte) (bool, error) {
	start := time.Now()
	found, err := s.store.CursorNext(id, prev, dst)
	s.observe(cursorNextMethod, start, len(prev.Value())+len(dst), err)
	return found, err
}

func (s *Store) CursorNextSize(id hoststore.TreeID, prev maybe.Maybe[[]byte]) (uint32, error) {
	start := time.Now()
	size, err := s.store.CursorNextSize(id, prev)
	s.observe(cursorNextSizeMethod, start, len(prev.Value()), err)
	return size, err
}

func (s *Store) Len(id hoststore.TreeID) (uint32, error) {
	start := time.Now()
	n, err := s.store.Len(id)
	s.observe(lenMethod, start, 0, err)
	return n, err
}

func (s *Store) observe(method string, start time.Time, size int, err error) {
	s.calls.WithLabelValues(method).Observe(float64(time.Since(start)))
	s.size.WithLabelValues(method).Observe(float64(size))
	if err != nil {
		s.failures.WithLabelValues(method).Inc()
	}
}
