package main

import "runtime/debug"

// resolveVersion picks the release version. A version injected via
// ldflags wins; builds installed with "go install module@version" fall
// back to the module version recorded in build info.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "" && ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
