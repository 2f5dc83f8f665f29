package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/branchlib/circulate/config"
)

func GetCurrentVersion() string {
	return config.Opts.Version
}

// Schema versions are the minor-truncated application version; a patch
// release never carries a schema change.
func GetSchemaVersion(version string) string {
	minorVersion := GetMinorVersion(version)
	return minorVersion + ".0"
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 2 {
		return version
	}
	return strings.Join(versionList[:2], ".")
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) >= 0
}

// SortVersion is a comparison function for slices.SortFunc over bare
// version strings.
func SortVersion(a, b string) int {
	return semver.Compare(fmt.Sprintf("v%s", a), fmt.Sprintf("v%s", b))
}
