package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/shared/paths"
)

// Lister reads directories from the host filesystem
type Lister struct {
	logger   *zap.Logger
	maxItems int
}

// NewLister creates a directory lister
func NewLister(logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{logger: logger, maxItems: MaxItems}
}

// List returns the entries of dir, directories first and then by path.
func (l *Lister) List(ctx context.Context, dir string, opts Options) (*Listing, error) {
	if dir == "" {
		return nil, readError("path parameter required", ErrNotExist)
	}
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, &Error{
			Code:    CodeInvalidPattern,
			Message: fmt.Sprintf("invalid pattern: %s", opts.Pattern),
			Err:     ErrInvalidPattern,
		}
	}

	if strings.HasPrefix(dir, "~") {
		if user, err := paths.Current(); err == nil {
			dir = paths.Expand(dir, user.Home)
		}
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, readError(fmt.Sprintf("cannot resolve path %s: %v", dir, err), err)
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, readError("Directory does not exist: "+root, ErrNotExist)
	case err != nil:
		return nil, readError(fmt.Sprintf("Cannot access directory: %s - %v", root, err), err)
	case !info.IsDir():
		return nil, readError("Path is not a directory: "+root, ErrNotDirectory)
	}

	depth := min(max(opts.Depth, 1), MaxDepth)

	keep := func(item Item) bool {
		if opts.Pattern == "" {
			return true
		}
		matched, _ := doublestar.Match(opts.Pattern, relPath(root, item.Path))
		return matched
	}

	var (
		items   []Item
		stopped bool
	)
	if depth == 1 {
		items, err = readDir(root)
		items = lo.Filter(items, func(item Item, _ int) bool { return keep(item) })
	} else {
		items, stopped, err = walk(ctx, root, depth, keep, l.maxItems)
	}
	if err != nil {
		l.logger.Debug("Directory listing failed", zap.String("path", root), zap.Error(err))
		return nil, err
	}

	if items == nil {
		items = []Item{}
	}
	slices.SortFunc(items, compareItems)

	listing := &Listing{Path: root, Items: items, Truncated: stopped}
	if len(listing.Items) > l.maxItems {
		listing.Items = listing.Items[:l.maxItems]
		listing.Truncated = true
	}

	if opts.Mime {
		sniff(listing.Items)
	}

	return listing, nil
}

func readDir(root string) ([]Item, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, readError(fmt.Sprintf("Cannot read directory: %s - %v", root, err), err)
	}

	return lo.Map(entries, func(entry os.DirEntry, _ int) Item {
		return newItem(filepath.Join(root, entry.Name()), entry)
	}), nil
}

// errLimit stops a walk once more than the item limit has been collected.
var errLimit = errors.New("item limit reached")

// walk collects the entries kept by keep down to depth levels. It stops
// early, reporting stopped, once more than limit entries are collected.
func walk(ctx context.Context, root string, depth int, keep func(Item) bool, limit int) (items []Item, stopped bool, err error) {
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || path == root {
			return nil // Unreadable subtrees are skipped
		}

		level := strings.Count(relPath(root, path), "/") + 1
		if level > depth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if item := newItem(path, d); keep(item) {
			mu.Lock()
			items = append(items, item)
			full := len(items) > limit
			mu.Unlock()
			if full {
				return errLimit
			}
		}

		if d.IsDir() && level == depth {
			return filepath.SkipDir
		}
		return nil
	})
	switch {
	case errors.Is(err, errLimit):
		return items, true, nil
	case err != nil:
		return nil, false, readError(fmt.Sprintf("Cannot read directory: %s - %v", root, err), err)
	}
	return items, false, nil
}

func newItem(path string, entry os.DirEntry) Item {
	item := Item{Name: entry.Name(), Path: path, Type: ItemFile}
	if entry.IsDir() {
		item.Type = ItemDirectory
	}
	return item
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func compareItems(a, b Item) int {
	if a.Type != b.Type {
		if a.Type == ItemDirectory {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Path, b.Path)
}

// sniff fills MimeType for files. Unreadable files are left untagged.
func sniff(items []Item) {
	for i := range items {
		if items[i].Type != ItemFile {
			continue
		}
		mtype, err := mimetype.DetectFile(items[i].Path)
		if err != nil {
			continue
		}
		items[i].MimeType = mtype.String()
	}
}
