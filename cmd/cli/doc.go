// Package cli constructs the dependency-update command-line interface, wiring
// the Cobra command hierarchy, configuration loader, and structured logging
// primitives. The update subcommand is the GitHub Actions entrypoint.
package cli
