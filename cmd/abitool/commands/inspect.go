// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/contractcodec/abi"
)

const hexInputKey = "hex"

func inspectCommand(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Parses an ABI descriptor and prints it",
		Long:  "Parses an ABI descriptor and prints it. A file of - reads the descriptor from stdin.",
		Args:  cobra.ExactArgs(1),
	}
	c.Flags().Bool(hexInputKey, false, "Treat the input as hex text rather than raw bytes")
	c.RunE = e.run(func(c *cobra.Command, args []string) error {
		isHex, err := c.Flags().GetBool(hexInputKey)
		if err != nil {
			return err
		}
		blob, err := readInput(c.InOrStdin(), args[0], isHex)
		if err != nil {
			return err
		}

		a, err := abi.Parse(blob)
		if err != nil {
			return err
		}
		e.log.Debug("parsed ABI",
			zap.String("file", args[0]),
			zap.Int("size", len(blob)),
			zap.Int("numFns", len(a.Fns)),
			zap.Int("numTypes", len(a.Types)),
		)
		return e.print(c.OutOrStdout(), a, func(w io.Writer) error {
			return writeABI(w, a)
		})
	})
	return c
}

func readInput(stdin io.Reader, file string, isHex bool) ([]byte, error) {
	var (
		blob []byte
		err  error
	)
	if file == "-" {
		blob, err = io.ReadAll(stdin)
	} else {
		blob, err = os.ReadFile(file)
	}
	if err != nil || !isHex {
		return blob, err
	}

	text := strings.TrimPrefix(string(bytes.TrimSpace(blob)), "0x")
	blob, err = hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode hex input: %w", err)
	}
	return blob, nil
}

func writeABI(w io.Writer, a *abi.ContractAbi) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "binder version: %s\n", a.BinderVersion)
	fmt.Fprintf(&sb, "client version: %s\n", a.ClientVersion)
	fmt.Fprintf(&sb, "state: %s\n", a.Render(a.State))

	sb.WriteString("functions:\n")
	for _, fn := range a.Fns {
		args := make([]string, len(fn.Args))
		for i, arg := range fn.Args {
			args[i] = fmt.Sprintf("%s: %s", arg.Name, a.Render(arg.Type))
		}
		fmt.Fprintf(&sb, "  %s %s %s(%s)", fn.Kind, fn.Shortname, fn.Name, strings.Join(args, ", "))
		if fn.SecretArg != nil {
			fmt.Fprintf(&sb, " %s: %s", fn.SecretArg.Name, a.Render(fn.SecretArg.Type))
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("types:\n")
	for i, t := range a.Types {
		fmt.Fprintf(&sb, "  #%d %s %s\n", i, t.Kind, t.Name)
		for _, field := range t.Fields {
			fmt.Fprintf(&sb, "    %s: %s\n", field.Name, a.Render(field.Type))
		}
		for _, variant := range t.Variants {
			fmt.Fprintf(&sb, "    %d => %s\n", variant.Discriminant, a.Render(variant.Type))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
