package version

// Version is the current promptcache release. Bump it on every release.
const Version = "0.3.0"

// FullVersion returns the version with its v prefix.
func FullVersion() string {
	return "v" + Version
}
