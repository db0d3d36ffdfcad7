// Package version carries the build metadata for the grip CLI.
// The raw variables can be overridden at build time via -ldflags.
package version

import "github.com/fatih/color"

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Major, Minor and Patch form the semantic version.
	Major = "0"
	Minor = "1"
	Patch = "0"

	// Prerelease is the optional pre-release tag ("dev", "rc.1", ...).
	Prerelease = "dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""

	// Version is the colorized semantic version string. fatih/color drops
	// the escape codes itself when stdout is not a terminal.
	Version = versionMajorColor.Sprint(Major) + "." +
		versionMinorColor.Sprint(Minor) + "." +
		versionPatchColor.Sprint(Patch) + tag()
)

// Plain returns the version without color codes, for logs and JSON output.
func Plain() string {
	return Major + "." + Minor + "." + Patch + tag()
}

func tag() string {
	if Prerelease == "" {
		return ""
	}
	return "-" + Prerelease
}
