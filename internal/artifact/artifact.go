// Package artifact loads the declared set of project metadata files and
// exposes their content plus a load status. Content problems (missing
// file, malformed JSON) are represented as status values, never as
// errors, so rule evaluation can report them instead of aborting.
package artifact

import "fmt"

// Kind declares how an artifact's content is interpreted.
type Kind string

const (
	KindRaw  Kind = "raw"
	KindJSON Kind = "json"
)

// Status is the load outcome of a single artifact.
type Status string

const (
	StatusOK         Status = "ok"
	StatusMissing    Status = "missing"
	StatusParseError Status = "parse-error"
)

// Spec declares one artifact to load: a stable identifier, a path
// relative to the project root, and the expected kind.
type Spec struct {
	ID   string
	Path string
	Kind Kind
}

// Artifact is a loaded artifact. Immutable once returned by the loader.
// Raw is populated whenever the file could be read; JSON only for
// KindJSON artifacts with StatusOK.
type Artifact struct {
	Spec   Spec
	Status Status
	Detail string
	Raw    []byte
	JSON   map[string]any
}

// OK reports whether the artifact loaded cleanly.
func (a *Artifact) OK() bool { return a.Status == StatusOK }

// Text returns the raw content as a string.
func (a *Artifact) Text() string { return string(a.Raw) }

// Set maps artifact IDs to loaded artifacts.
type Set map[string]*Artifact

// Get returns the artifact for id. A rule asking for an undeclared ID
// is a programming error in the catalog, reported loudly.
func (s Set) Get(id string) *Artifact {
	a, ok := s[id]
	if !ok {
		panic(fmt.Sprintf("artifact %q not declared", id))
	}
	return a
}
