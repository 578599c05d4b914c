package engine

import (
	"fmt"
	"runtime"
)

const version = "1.0.0"

// bannerColor is the colored banner for CLI output.
func bannerColor() string {
	return Cyan + "obfushtml" + Reset + " | v." + version + " | " + Gray + "inline <script> obfuscator" + Reset
}

// Version returns the version string.
func Version() string {
	return version
}

// VersionFull returns version with Go and platform info.
func VersionFull() string {
	return fmt.Sprintf("obfushtml v%s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
