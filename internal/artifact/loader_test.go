package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadAll_Statuses(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "manifest.json", `{"version": "1.5.2", "type": "module"}`)
	writeFile(t, root, "broken.json", `{"version": `)
	writeFile(t, root, "notes.txt", "plain text")

	set, err := LoadAll(context.Background(), root, []Spec{
		{ID: "manifest", Path: "manifest.json", Kind: KindJSON},
		{ID: "broken", Path: "broken.json", Kind: KindJSON},
		{ID: "notes", Path: "notes.txt", Kind: KindRaw},
		{ID: "gone", Path: "missing.json", Kind: KindJSON},
	})
	require.NoError(t, err)
	require.Len(t, set, 4)

	m := set.Get("manifest")
	assert.Equal(t, StatusOK, m.Status)
	assert.Equal(t, "1.5.2", m.JSON["version"])

	b := set.Get("broken")
	assert.Equal(t, StatusParseError, b.Status)
	assert.Nil(t, b.JSON, "no field access on a parse-error artifact")
	assert.NotEmpty(t, b.Detail)

	n := set.Get("notes")
	assert.Equal(t, StatusOK, n.Status)
	assert.Equal(t, "plain text", n.Text())
	assert.Nil(t, n.JSON)

	g := set.Get("gone")
	assert.Equal(t, StatusMissing, g.Status)
}

func TestLoadAll_StripsBOM(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bom.json", "\xef\xbb\xbf{\"ok\": true}")

	set, err := LoadAll(context.Background(), root, []Spec{
		{ID: "bom", Path: "bom.json", Kind: KindJSON},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, set.Get("bom").Status)
}

func TestLoadAll_FatalSetupErrors(t *testing.T) {
	root := t.TempDir()
	specs := []Spec{{ID: "a", Path: "a.txt", Kind: KindRaw}}

	_, err := LoadAll(context.Background(), filepath.Join(root, "nope"), specs)
	assert.Error(t, err, "missing root is fatal")

	_, err = LoadAll(context.Background(), root, nil)
	assert.ErrorIs(t, err, ErrNoArtifacts)

	_, err = LoadAll(context.Background(), root, []Spec{{ID: "esc", Path: "../outside.txt", Kind: KindRaw}})
	assert.Error(t, err, "paths escaping the root are rejected")

	_, err = LoadAll(context.Background(), root, []Spec{{ID: "abs", Path: "/etc/passwd", Kind: KindRaw}})
	assert.Error(t, err, "absolute paths are rejected")
}

func TestLoadAll_ExpiredContextMeansMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := LoadAll(ctx, root, []Spec{{ID: "a", Path: "a.txt", Kind: KindRaw}})
	require.NoError(t, err)
	assert.Equal(t, StatusMissing, set.Get("a").Status, "timeout is treated like a missing artifact")
}

func TestSet_GetUndeclaredPanics(t *testing.T) {
	assert.Panics(t, func() { Set{}.Get("nope") })
}
