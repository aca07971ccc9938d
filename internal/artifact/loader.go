package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajranjith/conformance-cli/internal/support"
)

// LoadTimeout bounds a single artifact read. A read that exceeds it is
// treated the same as a missing file.
const LoadTimeout = 5 * time.Second

// ErrNoArtifacts is returned when the declared spec list is empty.
var ErrNoArtifacts = errors.New("no artifacts declared")

// LoadAll reads every declared artifact under root. Loads run in
// parallel; results are keyed by artifact ID. The returned error is
// non-nil only for fatal setup problems (root missing, empty spec
// list, spec path escaping root). Per-artifact problems land in the
// artifact's Status.
func LoadAll(ctx context.Context, root string, specs []Spec) (Set, error) {
	if len(specs) == 0 {
		return nil, ErrNoArtifacts
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}
	for _, s := range specs {
		if filepath.IsAbs(s.Path) || strings.HasPrefix(filepath.Clean(s.Path), "..") {
			return nil, fmt.Errorf("artifact %s: path %q must stay under the project root", s.ID, s.Path)
		}
	}

	set := make(Set, len(specs))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			a := loadOne(ctx, root, spec)
			mu.Lock()
			set[spec.ID] = a
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return set, nil
}

func loadOne(ctx context.Context, root string, spec Spec) *Artifact {
	a := &Artifact{Spec: spec}

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	data, err := readFile(ctx, filepath.Join(root, spec.Path))
	if err != nil {
		a.Status = StatusMissing
		a.Detail = err.Error()
		return a
	}
	a.Raw = support.StripBOM(data)

	if spec.Kind == KindJSON {
		parsed := map[string]any{}
		if err := json.Unmarshal(a.Raw, &parsed); err != nil {
			a.Status = StatusParseError
			a.Detail = err.Error()
			return a
		}
		a.JSON = parsed
	}
	a.Status = StatusOK
	return a
}

// readFile reads path, giving up when ctx expires. The read itself
// runs in a goroutine because os.ReadFile cannot be interrupted.
func readFile(ctx context.Context, path string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		ch <- result{data, err}
	}()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("read %s: %w", path, ctx.Err())
	case r := <-ch:
		return r.data, r.err
	}
}
