package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveSources expands each argument into concrete loadable sources.
// URLs pass through untouched; file arguments may contain doublestar glob
// patterns ("docs/**/*.pdf") which are resolved against the filesystem so
// whole directories of PDFs can be ingested in one run.
func ResolveSources(args []string) ([]string, error) {
	var sources []string

	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}

		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			sources = append(sources, arg)
			continue
		}

		if !strings.ContainsAny(arg, "*?[{") {
			sources = append(sources, arg)
			continue
		}

		matches, err := expandGlob(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", arg)
		}
		sources = append(sources, matches...)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources given")
	}
	return sources, nil
}

func expandGlob(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))

	var matches []string
	err := doublestar.GlobWalk(os.DirFS(base), rest, func(path string, d os.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".pdf" {
			return nil
		}
		matches = append(matches, filepath.Join(base, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	sort.Strings(matches)
	return matches, nil
}
