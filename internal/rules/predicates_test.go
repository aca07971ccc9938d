package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajranjith/conformance-cli/internal/artifact"
)

func runOne(t *testing.T, r Rule, arts artifact.Set) Result {
	t.Helper()
	rep := Evaluate([]Rule{r}, arts, nil)
	require.Len(t, rep.Results, 1)
	return rep.Results[0]
}

func TestTextPredicates(t *testing.T) {
	arts := artifact.Set{"a": rawArtifact("a", "one two two three")}

	assert.True(t, runOne(t, TextContains("c", "a", "two", ""), arts).Passed())
	assert.False(t, runOne(t, TextContains("c", "a", "four", ""), arts).Passed())

	assert.True(t, runOne(t, TextAbsent("abs", "a", "four", ""), arts).Passed())
	res := runOne(t, TextAbsent("abs", "a", "two", ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "offset")

	assert.True(t, runOne(t, TextMatchCount("n", "a", "two", 2, ""), arts).Passed())
	assert.False(t, runOne(t, TextMatchCount("n", "a", "two", 1, ""), arts).Passed())
	assert.True(t, runOne(t, TextMatchesOnce("once", "a", "three", ""), arts).Passed())
}

func TestTextMatchCount_BadPattern(t *testing.T) {
	arts := artifact.Set{"a": rawArtifact("a", "text")}
	res := runOne(t, TextMatchCount("bad", "a", "([", 1, ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "internal evaluation error")
}

func TestFieldPredicates(t *testing.T) {
	arts := artifact.Set{"m": jsonArtifact("m", map[string]any{
		"version": "1.5.2",
		"type":    "module",
		"scripts": map[string]any{"test": "mocha"},
		"count":   float64(3),
	})}

	assert.True(t, runOne(t, FieldPresent("p", "m", "scripts.test", ""), arts).Passed())
	assert.False(t, runOne(t, FieldPresent("p", "m", "scripts.lint", ""), arts).Passed())

	assert.True(t, runOne(t, FieldType("t", "m", "version", "string", ""), arts).Passed())
	assert.True(t, runOne(t, FieldType("t", "m", "scripts", "object", ""), arts).Passed())
	assert.True(t, runOne(t, FieldType("t", "m", "count", "number", ""), arts).Passed())
	res := runOne(t, FieldType("t", "m", "count", "string", ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "want string")

	assert.True(t, runOne(t, FieldEquals("e", "m", "type", "module", ""), arts).Passed())
	assert.False(t, runOne(t, FieldEquals("e", "m", "type", "commonjs", ""), arts).Passed())
}

func TestFieldFormat(t *testing.T) {
	arts := artifact.Set{"m": jsonArtifact("m", map[string]any{
		"version": "1.5",
		"count":   float64(3),
	})}

	res := runOne(t, FieldFormat("f", "m", "version", SemVer, ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "semver")

	res = runOne(t, FieldFormat("f", "m", "count", SemVer, ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "want string")
}

func TestLookup(t *testing.T) {
	m := map[string]any{"a": map[string]any{"b": map[string]any{"c": "deep"}}}

	v, ok := Lookup(m, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, "deep", v)

	_, ok = Lookup(m, "a.b.c.d")
	assert.False(t, ok, "cannot descend into a string")
	_, ok = Lookup(m, "a.x")
	assert.False(t, ok)
}

func TestFieldsAgree(t *testing.T) {
	a := jsonArtifact("a", map[string]any{"type": "module"})
	b := jsonArtifact("b", map[string]any{"type": "module"})
	c := jsonArtifact("c", map[string]any{"type": "commonjs"})

	agree := FieldsAgree("mt", []string{"a", "b"}, "type", "")
	assert.True(t, runOne(t, agree, artifact.Set{"a": a, "b": b}).Passed())

	disagree := FieldsAgree("mt", []string{"a", "c"}, "type", "")
	res := runOne(t, disagree, artifact.Set{"a": a, "c": c})
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "commonjs")
}

func TestMarkerOrder(t *testing.T) {
	// "## [1.5.2]" at offset 10, "## [1.5.1]" at offset 50
	text := strings.Repeat(" ", 10) + "## [1.5.2]" + strings.Repeat(" ", 30) + "## [1.5.1]"
	arts := artifact.Set{"cl": rawArtifact("cl", text)}

	assert.True(t, runOne(t, MarkerOrder("o", "cl", "## [1.5.2]", "## [1.5.1]", ""), arts).Passed())

	res := runOne(t, MarkerOrder("o", "cl", "## [1.5.1]", "## [1.5.2]", ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "must precede")

	res = runOne(t, MarkerOrder("o", "cl", "## [9.9.9]", "## [1.5.1]", ""), arts)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Detail, "not found")
}
