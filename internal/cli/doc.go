// Package cli provides command-line interface setup and configuration
// for the signspeak application. It handles flag parsing, command
// creation, configuration management using cobra and viper, and wires
// the pipeline components together.
package cli
