package rules

import "regexp"

// Format is a named, canonical string-format predicate. Each concern
// has exactly one definition here so rules cannot drift apart on
// slightly different regexes for the same idea.
type Format struct {
	Name  string
	Valid func(string) bool
}

var (
	// semverRe follows semver.org: three dot-separated numeric fields,
	// optional pre-release and build metadata, no leading "v".
	semverRe = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

	// base58Re uses the Bitcoin/Solana alphabet: no 0, O, I, or l.
	base58Re = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

	// versionRangeRe accepts the npm range shapes used in manifests:
	// an exact version or one prefixed with ^, ~, >=, >, <=, <, or =.
	versionRangeRe = regexp.MustCompile(`^(\^|~|>=|>|<=|<|=)?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(-[0-9A-Za-z.-]+)?$`)
)

// Base58 address length bounds for a 32-byte public key.
const (
	minAddressLen = 32
	maxAddressLen = 44
)

// SemVer validates a strict semantic version string.
var SemVer = Format{
	Name:  "semver",
	Valid: func(s string) bool { return semverRe.MatchString(s) },
}

// Base58Address validates the shape of a base58-encoded address:
// restricted alphabet within the length range of a 32-byte key. This
// is a format check only, not a cryptographic verification.
var Base58Address = Format{
	Name: "base58 address",
	Valid: func(s string) bool {
		if len(s) < minAddressLen || len(s) > maxAddressLen {
			return false
		}
		return base58Re.MatchString(s)
	},
}

// VersionRange validates an npm-style dependency version range.
var VersionRange = Format{
	Name:  "version range",
	Valid: func(s string) bool { return versionRangeRe.MatchString(s) },
}

// MajorOf returns the leading major component of a semver-ish string,
// tolerating range prefixes. Empty when no numeric major is present.
func MajorOf(s string) string {
	m := regexp.MustCompile(`^[\^~><=]*(\d+)`).FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
