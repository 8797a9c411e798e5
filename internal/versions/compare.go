package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// It uses semantic versioning for comparison when both strings are valid semver,
// and falls back to lexicographic string comparison otherwise.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)

	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}

	return newSemver.GreaterThan(oldSemver)
}

// Latest returns the greatest version of the list according to IsNewerVersion,
// or an empty string for an empty list
func Latest(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	latest := candidates[0]
	for _, v := range candidates[1:] {
		if IsNewerVersion(v, latest) {
			latest = v
		}
	}
	return latest
}
