// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package commands implements the abitool command line.
package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ava-labs/contractcodec/config"
	"github.com/ava-labs/contractcodec/utils/logging"
)

const loggerName = "abitool"

// env is the state shared by every subcommand once the persistent flags have
// been resolved.
type env struct {
	config  config.Config
	factory logging.Factory
	log     logging.Logger
}

// Root returns the abitool command with every subcommand attached.
func Root() *cobra.Command {
	e := &env{}
	c := &cobra.Command{
		Use:           "abitool",
		Short:         "Inspects contract ABI descriptors, shortnames and persisted trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return e.init(c.Flags())
		},
	}
	config.AddFlags(c.PersistentFlags())
	c.AddCommand(
		inspectCommand(e),
		shortnameCommand(e),
		treeCommand(e),
	)
	return c
}

func (e *env) init(flags *pflag.FlagSet) error {
	v, err := config.BuildViper(flags)
	if err != nil {
		return err
	}
	e.config, err = config.GetConfig(v)
	if err != nil {
		return err
	}
	e.factory = logging.NewFactory(e.config.Logging)
	e.log, err = e.factory.Make(loggerName)
	if err != nil {
		e.factory.Close()
		return err
	}
	return nil
}

// run wraps [f] so the log factory is closed however [f] returns.
func (e *env) run(f func(c *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		defer e.factory.Close()
		return f(c, args)
	}
}

// print writes [v] as indented JSON, or hands the writer to [text] when text
// output is selected.
func (e *env) print(w io.Writer, v interface{}, text func(w io.Writer) error) error {
	if e.config.Output == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
