package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const (
	kFallbackSlug = "problem"

	// Bootstrap gives up after this many taken names rather than spinning forever.
	kMaxRootSuffix = 1 << 16
)

// Manager is the filesystem contract of the pipeline.
type Manager interface {
	// CreateRoot creates a fresh output directory under parent named after
	// handle, or handle-1, handle-2, ... when the name is taken.
	CreateRoot(ctx context.Context, parent string, handle string) (string, error)

	// CreateVerdictDirs creates one subdirectory of root per name.
	CreateVerdictDirs(ctx context.Context, root string, dirs []string) error

	// WriteSource writes content to path, replacing any existing file and
	// creating the parent directory when it is missing.
	WriteSource(ctx context.Context, path string, content string) error
}

// FSManager manages the output tree on disk.
type FSManager struct{}

func NewFSManager() *FSManager { return &FSManager{} }

func (m *FSManager) CreateRoot(ctx context.Context, parent string, handle string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", fmt.Errorf("handle is required")
	}
	if strings.ContainsAny(handle, `/\`) || handle == "." || handle == ".." {
		return "", fmt.Errorf("handle %q is not a valid directory name", handle)
	}

	parent = strings.TrimSpace(parent)
	if parent == "" {
		parent = "."
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("create output parent dir %s: %w", parent, err)
	}

	// Mkdir (not MkdirAll) fails with ErrExist on any taken name, including
	// one held by a regular file, which makes the probe and the create one step.
	for i := 0; i < kMaxRootSuffix; i++ {
		name := handle
		if i > 0 {
			name = handle + "-" + strconv.Itoa(i)
		}
		dir := filepath.Join(parent, name)

		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	return "", fmt.Errorf("create output dir for %s: no free name under %s", handle, parent)
}

func (m *FSManager) CreateVerdictDirs(ctx context.Context, root string, dirs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("root is required")
	}

	for _, d := range dirs {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("verdict dir name is empty")
		}
		p := filepath.Join(root, d)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("create verdict dir %s: %w", p, err)
		}
	}
	return nil
}

func (m *FSManager) WriteSource(ctx context.Context, path string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is empty")
	}

	// Verdicts missing from the catalog get their directory on first use.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create verdict dir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write source %s: %w", path, err)
	}
	return nil
}

// ProblemSlug builds the file-name stem for a problem, e.g. contest 4,
// index "A", name "Watermelon" gives "4a-watermelon".
func ProblemSlug(contestID int, index string, name string) string {
	s := slug.Make(fmt.Sprintf("%d%s %s", contestID, strings.TrimSpace(index), strings.TrimSpace(name)))
	if s == "" {
		return kFallbackSlug
	}
	return s
}

// OutputPath is <root>/<verdictDir>/<problemSlug>-<submissionID>.<ext>.
// It depends only on its arguments; submission ids are unique, so two
// retained submissions never share a path.
func OutputPath(root string, verdictDir string, problemSlug string, submissionID int64, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	name := fmt.Sprintf("%s-%d.%s", problemSlug, submissionID, ext)
	return filepath.Join(root, verdictDir, name)
}
