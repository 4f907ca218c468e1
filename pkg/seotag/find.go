package seotag

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// accepted reports whether the text after the last '.' in path is in exts.
// Matching is case-sensitive.
func accepted(path string, exts []string) bool {
	base := filepath.Base(path)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return false
	}
	return slices.Contains(exts, base[i+1:])
}

// Find lists the accepted images directly inside root, in lexical order.
// Subdirectories and dotfiles are skipped.
func Find(root string, exts []string) ([]string, error) {
	found := []string{}
	root = filepath.Clean(root)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if filepath.Clean(path) == root {
				return nil
			}
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}

			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil {
				return err
			}
			if isDir {
				return godirwalk.SkipThis
			}

			if accepted(path, exts) {
				klog.V(1).Infof("found %s", path)
				found = append(found, path)
			}
			return nil
		},
	})

	return found, err
}
