// Package main hosts the kelvin CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the batch conversion run (the default
// when kelvin is invoked with no arguments), configuration scaffolding, and
// version reporting. Configuration resolution and logging setup are
// centralized here so subcommands stay declarative; the conversion logic
// itself lives in internal/converter.
package main
