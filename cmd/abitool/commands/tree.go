// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/contractcodec/codec/statecodec"
	"github.com/ava-labs/contractcodec/database/leveldb"
	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/hoststore/dbstore"
	"github.com/ava-labs/contractcodec/hoststore/meterstore"
	"github.com/ava-labs/contractcodec/utils/maybe"
	"github.com/ava-labs/contractcodec/utils/wideint"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

const (
	metricsKey = "metrics"
	keyTypeKey = "key-type"

	metricsNamespace = "abitool_store"
)

var (
	errUnknownKeyType = errors.New("unknown key type")

	// keyTypes are the key types dump can split entries with. Keys are stored
	// in the State format.
	keyTypes = map[string]reflect.Type{
		"u8":      reflect.TypeOf(uint8(0)),
		"u16":     reflect.TypeOf(uint16(0)),
		"u32":     reflect.TypeOf(uint32(0)),
		"u64":     reflect.TypeOf(uint64(0)),
		"u128":    reflect.TypeOf(wideint.Uint128{}),
		"i8":      reflect.TypeOf(int8(0)),
		"i16":     reflect.TypeOf(int16(0)),
		"i32":     reflect.TypeOf(int32(0)),
		"i64":     reflect.TypeOf(int64(0)),
		"i128":    reflect.TypeOf(wideint.Int128{}),
		"bool":    reflect.TypeOf(false),
		"string":  reflect.TypeOf(""),
		"address": reflect.TypeOf([20]byte{}),
	}
)

type entryReply struct {
	Key   string `json:"key"`
	Raw   string `json:"rawKey"`
	Value string `json:"value"`
}

type dumpReply struct {
	Tree    hoststore.TreeID `json:"tree"`
	Len     uint32           `json:"len"`
	Entries []entryReply     `json:"entries"`
}

type getReply struct {
	Tree  hoststore.TreeID `json:"tree"`
	Key   string           `json:"key"`
	Found bool             `json:"found"`
	Value string           `json:"value,omitempty"`
}

// storeFunc is a tree subcommand body that runs against an open store.
type storeFunc func(c *cobra.Command, args []string, store hoststore.Store) error

func treeCommand(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "tree",
		Short: "Manipulates the trees persisted in the leveldb database",
	}
	c.PersistentFlags().Bool(metricsKey, false, "Print the host store metrics to stderr when the command finishes")

	create := &cobra.Command{
		Use:   "create",
		Short: "Allocates a new empty tree and prints its id",
		Args:  cobra.NoArgs,
		RunE: e.withStore(func(c *cobra.Command, _ []string, store hoststore.Store) error {
			id, err := store.Create()
			if err != nil {
				return err
			}
			return e.print(c.OutOrStdout(), map[string]hoststore.TreeID{"tree": id}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, id)
				return err
			})
		}),
	}

	put := &cobra.Command{
		Use:   "put <tree> <key> <value>",
		Short: "Sets the hex key of a tree to the hex value",
		Args:  cobra.ExactArgs(3),
		RunE: e.withStore(func(_ *cobra.Command, args []string, store hoststore.Store) error {
			id, key, err := parseTreeKey(args)
			if err != nil {
				return err
			}
			value, err := parseHex(args[2])
			if err != nil {
				return err
			}
			return store.Upsert(id, key, value)
		}),
	}

	get := &cobra.Command{
		Use:   "get <tree> <key>",
		Short: "Prints the value of the hex key of a tree",
		Args:  cobra.ExactArgs(2),
		RunE: e.withStore(func(c *cobra.Command, args []string, store hoststore.Store) error {
			id, key, err := parseTreeKey(args)
			if err != nil {
				return err
			}
			reply, err := getEntry(store, id, key)
			if err != nil {
				return err
			}
			return e.print(c.OutOrStdout(), reply, func(w io.Writer) error {
				if !reply.Found {
					_, err := fmt.Fprintln(w, "absent")
					return err
				}
				_, err := fmt.Fprintln(w, reply.Value)
				return err
			})
		}),
	}

	del := &cobra.Command{
		Use:   "delete <tree> <key>",
		Short: "Removes the hex key from a tree",
		Args:  cobra.ExactArgs(2),
		RunE: e.withStore(func(_ *cobra.Command, args []string, store hoststore.Store) error {
			id, key, err := parseTreeKey(args)
			if err != nil {
				return err
			}
			return store.Delete(id, key)
		}),
	}

	dump := &cobra.Command{
		Use:   "dump <tree>",
		Short: "Prints every entry of a tree in key order",
		Args:  cobra.ExactArgs(1),
		RunE: e.withStore(func(c *cobra.Command, args []string, store hoststore.Store) error {
			id, err := parseTreeID(args[0])
			if err != nil {
				return err
			}
			keyTypeName, err := c.Flags().GetString(keyTypeKey)
			if err != nil {
				return err
			}
			keyType, ok := keyTypes[keyTypeName]
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownKeyType, keyTypeName)
			}

			reply, err := dumpTree(store, id, keyType)
			if err != nil {
				return err
			}
			return e.print(c.OutOrStdout(), reply, func(w io.Writer) error {
				return writeDump(w, reply)
			})
		}),
	}
	dump.Flags().String(keyTypeKey, "u32", "Type of the keys of the tree. Should be one of {"+strings.Join(keyTypeNames(), ", ")+"}")

	c.AddCommand(create, put, get, del, dump)
	return c
}

// withStore opens the database for the duration of [f], metering the store
// when requested.
func (e *env) withStore(f storeFunc) func(*cobra.Command, []string) error {
	return e.run(func(c *cobra.Command, args []string) error {
		withMetrics, err := c.Flags().GetBool(metricsKey)
		if err != nil {
			return err
		}

		db, err := leveldb.New(e.config.DBDir, e.log)
		if err != nil {
			return fmt.Errorf("couldn't open database at %s: %w", e.config.DBDir, err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				e.log.Warn("couldn't close database", zap.Error(err))
			}
		}()

		var store hoststore.Store
		store, err = dbstore.New(db, e.log)
		if err != nil {
			return err
		}
		if !withMetrics {
			return f(c, args, store)
		}

		registry := prometheus.NewRegistry()
		store, err = meterstore.New(metricsNamespace, registry, store)
		if err != nil {
			return err
		}
		if err := f(c, args, store); err != nil {
			return err
		}
		return writeMetrics(c.ErrOrStderr(), registry)
	})
}

func getEntry(store hoststore.Store, id hoststore.TreeID, key []byte) (*getReply, error) {
	reply := &getReply{
		Tree: id,
		Key:  hex.EncodeToString(key),
	}
	size, err := store.SizeOf(id, key)
	if err != nil || size == hoststore.SizeAbsent {
		return reply, err
	}
	value := make([]byte, size)
	reply.Found, err = store.Fetch(id, key, value)
	if err != nil || !reply.Found {
		return reply, err
	}
	reply.Value = hex.EncodeToString(value)
	return reply, nil
}

// dumpTree walks the cursor of [id]. The key of every entry is recovered by
// decoding one [keyType] from the front of it.
func dumpTree(store hoststore.Store, id hoststore.TreeID, keyType reflect.Type) (*dumpReply, error) {
	n, err := store.Len(id)
	if err != nil {
		return nil, err
	}
	reply := &dumpReply{
		Tree:    id,
		Len:     n,
		Entries: make([]entryReply, 0, n),
	}

	stateCodec := statecodec.Default()
	prev := maybe.Nothing[[]byte]()
	for {
		size, err := store.CursorNextSize(id, prev)
		if err != nil {
			return nil, err
		}
		if size == hoststore.SizeAbsent {
			return reply, nil
		}
		entry := make([]byte, size)
		ok, err := store.CursorNext(id, prev, entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			return reply, nil
		}

		key := reflect.New(keyType)
		p := wrappers.Packer{Bytes: entry}
		if err := stateCodec.UnmarshalFrom(&p, key.Interface()); err != nil {
			return nil, fmt.Errorf("couldn't decode key of entry %x: %w", entry, err)
		}
		rawKey := entry[:p.Offset]
		reply.Entries = append(reply.Entries, entryReply{
			Key:   formatKey(key.Elem().Interface()),
			Raw:   hex.EncodeToString(rawKey),
			Value: hex.EncodeToString(entry[p.Offset:]),
		})
		prev = maybe.Some(rawKey)
	}
}

func formatKey(key interface{}) string {
	if address, ok := key.([20]byte); ok {
		return hex.EncodeToString(address[:])
	}
	return fmt.Sprint(key)
}

func writeDump(w io.Writer, reply *dumpReply) error {
	if _, err := fmt.Fprintf(w, "tree %d: %d entries\n", reply.Tree, reply.Len); err != nil {
		return err
	}
	for _, entry := range reply.Entries {
		if _, err := fmt.Fprintf(w, "%s (%s) => 0x%s\n", entry.Key, entry.Raw, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

// writeMetrics prints one line per metric series gathered by [registry]:
// the sample count of histograms and the value of counters.
func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, label := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}

			var value string
			switch {
			case m.GetHistogram() != nil:
				value = strconv.FormatUint(m.GetHistogram().GetSampleCount(), 10)
			case m.GetCounter() != nil:
				value = strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
			default:
				continue
			}
			if _, err := fmt.Fprintf(w, "%s{%s} %s\n", family.GetName(), strings.Join(labels, ","), value); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseTreeKey(args []string) (hoststore.TreeID, []byte, error) {
	id, err := parseTreeID(args[0])
	if err != nil {
		return 0, nil, err
	}
	key, err := parseHex(args[1])
	return id, key, err
}

func parseTreeID(s string) (hoststore.TreeID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse tree id %q: %w", s, err)
	}
	return hoststore.TreeID(id), nil
}

func parseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("couldn't decode hex %q: %w", s, err)
	}
	return b, nil
}

func keyTypeNames() []string {
	names := maps.Keys(keyTypes)
	slices.Sort(names)
	return names
}
