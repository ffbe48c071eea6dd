// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	showPool    bool
	showFields  bool
	showMethods bool
	showAttrs   bool
	showCode    bool
)

func main() {

	rootCmd := &cobra.Command{
		Use:   "cafedump",
		Short: "A JVM class file dumper",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 1.0.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [class files]",
		Short: "Dump class file structures",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	dumpCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	dumpCmd.Flags().BoolVarP(&showPool, "pool", "p", false, "Dump the constant pool")
	dumpCmd.Flags().BoolVarP(&showFields, "fields", "f", false, "Dump fields")
	dumpCmd.Flags().BoolVarP(&showMethods, "methods", "m", false, "Dump methods")
	dumpCmd.Flags().BoolVarP(&showAttrs, "attributes", "a", false, "Dump class attributes")
	dumpCmd.Flags().BoolVarP(&showCode, "code", "c", false, "Dump method bytecode")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
