package main

import (
	"fmt"
	"strings"

	"github.com/ajranjith/conformance-cli/internal/artifact"
	"github.com/ajranjith/conformance-cli/internal/rules"
)

// Artifact identifiers used throughout the catalog.
const (
	artCI        = "ci"
	artManifest  = "manifest"
	artProgram   = "program-manifest"
	artLockfile  = "lockfile"
	artChangelog = "changelog"
)

// artifactSpecs declares the fixed artifact set, paths relative to the
// project root.
func artifactSpecs() []artifact.Spec {
	return []artifact.Spec{
		{ID: artCI, Path: ".github/workflows/ci.yml", Kind: artifact.KindRaw},
		{ID: artManifest, Path: "package.json", Kind: artifact.KindJSON},
		{ID: artProgram, Path: "program/package.json", Kind: artifact.KindJSON},
		{ID: artLockfile, Path: "package-lock.json", Kind: artifact.KindRaw},
		{ID: artChangelog, Path: "CHANGELOG.md", Kind: artifact.KindRaw},
	}
}

// ruleCatalog is the ordered rule list. Adding a validation means
// appending a declaration here; the engine does the rest.
func ruleCatalog() []rules.Rule {
	return []rules.Rule{
		// Existence
		rules.Exists("workflow-present", artCI, "CI workflow file exists"),
		rules.Exists("manifest-present", artManifest, "root manifest exists and parses"),
		rules.Exists("program-manifest-present", artProgram, "program manifest exists and parses"),
		rules.Exists("lockfile-present", artLockfile, "dependency lockfile exists"),
		rules.Exists("changelog-present", artChangelog, "changelog exists"),

		// Workflow text
		rules.TextContains("ci-runs-tests", artCI, "npm test", "workflow runs the test suite"),
		rules.TextMatchesOnce("ci-node-version", artCI, `(?m)^\s*node-version:`, "workflow pins exactly one node version"),
		rules.TextContains("ci-on-push", artCI, "push", "workflow triggers on push"),
		rules.Warn(rules.TextAbsent("ci-no-inline-keys", artCI, "PRIVATE_KEY=", "workflow does not inline signing keys")),

		// Manifest fields
		rules.FieldType("manifest-version-string", artManifest, "version", "string", "manifest version is a string"),
		rules.FieldType("manifest-deps-object", artManifest, "dependencies", "object", "manifest dependencies is a mapping"),
		rules.FieldType("manifest-dev-deps-object", artManifest, "devDependencies", "object", "root manifest declares devDependencies"),
		rules.FieldPresent("manifest-test-script", artManifest, "scripts.test", "manifest declares a test script"),
		rules.Warn(rules.FieldPresent("manifest-lint-script", artManifest, "scripts.lint", "manifest declares a lint script")),
		rules.FieldType("program-version-string", artProgram, "version", "string", "program manifest version is a string"),

		// Formats
		rules.FieldFormat("manifest-version-semver", artManifest, "version", rules.SemVer, "manifest version is strict semver"),
		rules.FieldFormat("program-version-semver", artProgram, "version", rules.SemVer, "program manifest version is strict semver"),
		rules.FieldFormat("bs58-dep-range", artManifest, "dependencies.bs58", rules.VersionRange, "bs58 dependency uses a valid version range"),
		rules.FieldFormat("program-id-base58", artManifest, "config.programId", rules.Base58Address, "configured program address is base58"),

		// Cross-artifact consistency
		rules.FieldsAgree("module-type-consistent", []string{artManifest, artProgram}, "type", "both manifests agree on module type"),
		rules.Cross("major-versions-aligned", []string{artManifest, artProgram},
			"manifest and program manifest share a major version", majorVersionsAligned),
		rules.Cross("lockfile-tracks-manifest", []string{artManifest, artLockfile},
			"lockfile records the manifest version", lockfileTracksManifest),
		rules.Cross("changelog-lists-release", []string{artManifest, artChangelog},
			"changelog has an entry for the current version", changelogListsRelease),

		// Ordering
		changelogNewestFirst(),
	}
}

func manifestVersion(arts artifact.Set) (string, rules.Outcome) {
	v, ok := rules.Lookup(arts.Get(artManifest).JSON, "version")
	if !ok {
		return "", rules.Failf("field %q not found", "version")
	}
	s, ok := v.(string)
	if !ok {
		return "", rules.Failf("field %q is not a string", "version")
	}
	return s, rules.Pass()
}

func majorVersionsAligned(arts artifact.Set) rules.Outcome {
	rootV, out := manifestVersion(arts)
	if !out.Pass {
		return out
	}
	pv, ok := rules.Lookup(arts.Get(artProgram).JSON, "version")
	if !ok {
		return rules.Failf("program manifest has no version field")
	}
	progV, _ := pv.(string)
	rootMajor, progMajor := rules.MajorOf(rootV), rules.MajorOf(progV)
	if rootMajor == "" || progMajor == "" || rootMajor != progMajor {
		return rules.Failf("major version mismatch: manifest %s vs program %s", rootV, progV)
	}
	return rules.Pass()
}

func lockfileTracksManifest(arts artifact.Set) rules.Outcome {
	v, out := manifestVersion(arts)
	if !out.Pass {
		return out
	}
	needle := fmt.Sprintf("%q: %q", "version", v)
	if !strings.Contains(arts.Get(artLockfile).Text(), needle) {
		return rules.Failf("lockfile does not record version %s", v)
	}
	return rules.Pass()
}

func changelogListsRelease(arts artifact.Set) rules.Outcome {
	v, out := manifestVersion(arts)
	if !out.Pass {
		return out
	}
	if !strings.Contains(arts.Get(artChangelog).Text(), releaseHeading(v)) {
		return rules.Failf("no changelog heading for version %s", v)
	}
	return rules.Pass()
}

// changelogNewestFirst asserts the current release heading is the first
// release heading in the changelog.
func changelogNewestFirst() rules.Rule {
	r := rules.Cross("changelog-newest-first", []string{artManifest, artChangelog},
		"changelog lists the current version first", func(arts artifact.Set) rules.Outcome {
			v, out := manifestVersion(arts)
			if !out.Pass {
				return out
			}
			text := arts.Get(artChangelog).Text()
			first := strings.Index(text, "## [")
			if first < 0 {
				return rules.Failf("changelog has no release headings")
			}
			cur := strings.Index(text, releaseHeading(v))
			if cur < 0 {
				return rules.Failf("no changelog heading for version %s", v)
			}
			if cur != first {
				return rules.Failf("heading for %s at offset %d is not the first heading (offset %d)", v, cur, first)
			}
			return rules.Pass()
		})
	r.Category = rules.CategoryOrdering
	return r
}

func releaseHeading(version string) string {
	return "## [" + version + "]"
}
