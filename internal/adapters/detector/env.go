// Package detector provides environment detection for log format selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how diagnostics are rendered.
type OutputMode int

const (
	// ModeAuto picks a mode from the environment.
	ModeAuto OutputMode = iota
	// ModePretty renders colored lines for a terminal.
	ModePretty
	// ModeJSON renders machine-readable records.
	ModeJSON
)

// DetectEnvironment returns ModePretty when stderr is a terminal outside CI
// and ModeJSON otherwise.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModeJSON
	}
	return ModePretty
}

// ResolveMode applies the user's flag to the detected mode.
// userFlag is one of "auto", "pretty", "json" or empty; unknown values fall
// back to the detected mode.
func ResolveMode(detected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "pretty", "text":
		return ModePretty
	case "json":
		return ModeJSON
	default:
		return detected
	}
}
