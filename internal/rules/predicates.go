package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ajranjith/conformance-cli/internal/artifact"
)

// ---------------------------------------------------------------------------
// Existence
// ---------------------------------------------------------------------------

// Exists passes when the artifact loaded with status ok. The engine
// already fails rules whose artifacts are unavailable, so the predicate
// body is trivially true; declaring the dependency is the check.
func Exists(id, artifactID, summary string) Rule {
	return Rule{
		ID:        id,
		Category:  CategoryExistence,
		Severity:  SeverityError,
		Artifacts: []string{artifactID},
		Summary:   summary,
		Check:     func(artifact.Set) Outcome { return Pass() },
	}
}

// ---------------------------------------------------------------------------
// Text presence / absence / match counts
// ---------------------------------------------------------------------------

// TextContains requires the raw artifact text to contain substr.
func TextContains(id, artifactID, substr, summary string) Rule {
	return textRule(id, artifactID, summary, func(text string) Outcome {
		if !strings.Contains(text, substr) {
			return Failf("missing required text %q", substr)
		}
		return Pass()
	})
}

// TextAbsent requires the raw artifact text to not contain substr.
func TextAbsent(id, artifactID, substr, summary string) Rule {
	return textRule(id, artifactID, summary, func(text string) Outcome {
		if idx := strings.Index(text, substr); idx >= 0 {
			return Failf("forbidden text %q found at offset %d", substr, idx)
		}
		return Pass()
	})
}

// TextMatchCount requires pattern to match exactly want times.
func TextMatchCount(id, artifactID, pattern string, want int, summary string) Rule {
	return textRule(id, artifactID, summary, func(text string) Outcome {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Failf("internal evaluation error: %v", err)
		}
		got := len(re.FindAllStringIndex(text, -1))
		if got != want {
			return Failf("pattern %q matched %d times, want %d", pattern, got, want)
		}
		return Pass()
	})
}

// TextMatchesOnce requires pattern to match exactly once.
func TextMatchesOnce(id, artifactID, pattern, summary string) Rule {
	return TextMatchCount(id, artifactID, pattern, 1, summary)
}

func textRule(id, artifactID, summary string, check func(string) Outcome) Rule {
	return Rule{
		ID:        id,
		Category:  CategoryText,
		Severity:  SeverityError,
		Artifacts: []string{artifactID},
		Summary:   summary,
		Check: func(arts artifact.Set) Outcome {
			return check(arts.Get(artifactID).Text())
		},
	}
}

// ---------------------------------------------------------------------------
// JSON fields (dot-separated key paths)
// ---------------------------------------------------------------------------

// FieldPresent requires the dot-separated path to exist.
func FieldPresent(id, artifactID, path, summary string) Rule {
	return fieldRule(id, artifactID, summary, func(arts artifact.Set) Outcome {
		if _, ok := Lookup(arts.Get(artifactID).JSON, path); !ok {
			return Failf("field %q not found", path)
		}
		return Pass()
	})
}

// FieldType requires the value at path to have the given primitive
// type: "string", "number", "bool", "object", or "array".
func FieldType(id, artifactID, path, wantType, summary string) Rule {
	return fieldRule(id, artifactID, summary, func(arts artifact.Set) Outcome {
		v, ok := Lookup(arts.Get(artifactID).JSON, path)
		if !ok {
			return Failf("field %q not found", path)
		}
		if got := jsonTypeOf(v); got != wantType {
			return Failf("field %q is %s, want %s", path, got, wantType)
		}
		return Pass()
	})
}

// FieldEquals requires the value at path to equal want.
func FieldEquals(id, artifactID, path string, want any, summary string) Rule {
	return fieldRule(id, artifactID, summary, func(arts artifact.Set) Outcome {
		v, ok := Lookup(arts.Get(artifactID).JSON, path)
		if !ok {
			return Failf("field %q not found", path)
		}
		if v != want {
			return Failf("field %q = %v, want %v", path, v, want)
		}
		return Pass()
	})
}

// FieldFormat requires the string value at path to satisfy format.
func FieldFormat(id, artifactID, path string, format Format, summary string) Rule {
	r := fieldRule(id, artifactID, summary, func(arts artifact.Set) Outcome {
		v, ok := Lookup(arts.Get(artifactID).JSON, path)
		if !ok {
			return Failf("field %q not found", path)
		}
		s, ok := v.(string)
		if !ok {
			return Failf("field %q is %s, want string", path, jsonTypeOf(v))
		}
		if !format.Valid(s) {
			return Failf("field %q = %q does not satisfy %s", path, s, format.Name)
		}
		return Pass()
	})
	r.Category = CategoryFormat
	return r
}

func fieldRule(id, artifactID, summary string, check CheckFunc) Rule {
	return Rule{
		ID:        id,
		Category:  CategoryField,
		Severity:  SeverityError,
		Artifacts: []string{artifactID},
		Summary:   summary,
		Check:     check,
	}
}

// Lookup resolves a dot-separated key path in parsed JSON.
func Lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func jsonTypeOf(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ---------------------------------------------------------------------------
// Cross-artifact relations
// ---------------------------------------------------------------------------

// Cross builds a rule over two or more artifacts with a custom relation.
func Cross(id string, artifactIDs []string, summary string, check CheckFunc) Rule {
	return Rule{
		ID:        id,
		Category:  CategoryCross,
		Severity:  SeverityError,
		Artifacts: artifactIDs,
		Summary:   summary,
		Check:     check,
	}
}

// FieldsAgree requires the same dot path to resolve to equal values in
// every listed artifact.
func FieldsAgree(id string, artifactIDs []string, path, summary string) Rule {
	return Cross(id, artifactIDs, summary, func(arts artifact.Set) Outcome {
		var first any
		for i, aid := range artifactIDs {
			v, ok := Lookup(arts.Get(aid).JSON, path)
			if !ok {
				return Failf("field %q not found in %s", path, aid)
			}
			if i == 0 {
				first = v
				continue
			}
			if v != first {
				return Failf("field %q differs: %s=%v, %s=%v", path, artifactIDs[0], first, aid, v)
			}
		}
		return Pass()
	})
}

// ---------------------------------------------------------------------------
// Ordering
// ---------------------------------------------------------------------------

// MarkerOrder requires the first occurrence of before to precede the
// first occurrence of after in the raw artifact text. Both markers
// must be present.
func MarkerOrder(id, artifactID, before, after, summary string) Rule {
	r := textRule(id, artifactID, summary, func(text string) Outcome {
		bi := strings.Index(text, before)
		ai := strings.Index(text, after)
		if bi < 0 {
			return Failf("marker %q not found", before)
		}
		if ai < 0 {
			return Failf("marker %q not found", after)
		}
		if bi >= ai {
			return Failf("marker %q (offset %d) must precede %q (offset %d)", before, bi, after, ai)
		}
		return Pass()
	})
	r.Category = CategoryOrdering
	return r
}

// Warn downgrades a rule's severity so gating can tolerate it.
func Warn(r Rule) Rule {
	r.Severity = SeverityWarn
	return r
}
