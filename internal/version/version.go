// Package version provides build and version information.
package version

// Version is the current application version. Release builds override it
// with -ldflags "-X .../internal/version.Version=...".
var Version = "0.3.0"

// Milestones:
// 0.3.0 - Cobra CLI, batch and prompts commands, sqlite longitude cache, metrics endpoint
// 0.2.0 - Horizons provider with table fallback, per-body unavailable readings
// 0.1.0 - Initial release: signs, lunar phase, aspects, TUI day stepper
