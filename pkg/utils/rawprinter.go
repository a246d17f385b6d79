// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// RawPrinter is the subset of *cobra.Command used to report build output,
// so packages below cmd can print without depending on a command.
type RawPrinter interface {
	Print(i ...any)
	Println(i ...any)
	Printf(format string, i ...any)
	PrintErr(i ...any)
	PrintErrln(i ...any)
	PrintErrf(format string, i ...any)
}

// StdPrinter writes to Out and Err, falling back to the process streams.
type StdPrinter struct {
	Out io.Writer
	Err io.Writer
}

func (s StdPrinter) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

func (s StdPrinter) err() io.Writer {
	if s.Err == nil {
		return os.Stderr
	}
	return s.Err
}

func (s StdPrinter) Print(i ...any) {
	fmt.Fprint(s.out(), i...)
}

func (s StdPrinter) Println(i ...any) {
	fmt.Fprintln(s.out(), i...)
}

func (s StdPrinter) Printf(format string, i ...any) {
	fmt.Fprintf(s.out(), format, i...)
}

func (s StdPrinter) PrintErr(i ...any) {
	fmt.Fprint(s.err(), i...)
}

func (s StdPrinter) PrintErrln(i ...any) {
	fmt.Fprintln(s.err(), i...)
}

func (s StdPrinter) PrintErrf(format string, i ...any) {
	fmt.Fprintf(s.err(), format, i...)
}

var (
	_ RawPrinter = StdPrinter{}
	_ RawPrinter = (*cobra.Command)(nil)
)
