// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/contractcodec/shortname"
)

const (
	fromBytesKey = "from-bytes"
	fromNameKey  = "from-name"
)

type shortnameReply struct {
	Name  string              `json:"name,omitempty"`
	Value shortname.Shortname `json:"value"`
	Bytes string              `json:"bytes"`
}

func shortnameCommand(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "shortname <name|0xVALUE|VALUE>",
		Short: "Prints a function shortname and its canonical encoding",
		Long: "Prints a function shortname and its canonical encoding. The argument is read as a " +
			"0x prefixed hex value, then as a decimal value, and otherwise as a function name " +
			"whose shortname is derived from its hash.",
		Args: cobra.ExactArgs(1),
	}
	flags := c.Flags()
	flags.Bool(fromBytesKey, false, "Treat the argument as the hex of an encoded shortname")
	flags.Bool(fromNameKey, false, "Always treat the argument as a function name")
	c.RunE = e.run(func(c *cobra.Command, args []string) error {
		fromBytes, err := c.Flags().GetBool(fromBytesKey)
		if err != nil {
			return err
		}
		fromName, err := c.Flags().GetBool(fromNameKey)
		if err != nil {
			return err
		}

		reply, err := parseShortname(args[0], fromBytes, fromName)
		if err != nil {
			return err
		}
		return e.print(c.OutOrStdout(), reply, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s %s\n", reply.Value, reply.Bytes)
			return err
		})
	})
	return c
}

func parseShortname(arg string, fromBytes, fromName bool) (*shortnameReply, error) {
	var (
		reply shortnameReply
		sn    shortname.Shortname
	)
	switch {
	case fromBytes:
		b, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return nil, fmt.Errorf("couldn't decode shortname bytes: %w", err)
		}
		sn, err = shortname.FromBytes(b)
		if err != nil {
			return nil, err
		}
	case fromName:
		reply.Name = arg
		sn = shortname.FromName(arg)
	default:
		if v, ok := parseValue(arg); ok {
			sn = shortname.FromUint32(v)
		} else {
			reply.Name = arg
			sn = shortname.FromName(arg)
		}
	}
	reply.Value = sn
	reply.Bytes = hex.EncodeToString(sn.Bytes())
	return &reply, nil
}

func parseValue(arg string) (uint32, bool) {
	base := 10
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		arg = arg[2:]
		base = 16
	}
	v, err := strconv.ParseUint(arg, base, 32)
	return uint32(v), err == nil
}
