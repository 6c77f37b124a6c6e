package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"permasnap/internal/services"
)

// Renderer output names.
const (
	PageFileName     = "index.html"
	MetadataFileName = "metadata.json"
)

// File is a captured file with its resolved role.
type File struct {
	Path string
	Role Role
}

// Enumerate lists the publishable files in a capture directory. The metadata
// file and subdirectories are skipped; exactly one page and one screenshot
// must remain.
func Enumerate(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrRead, "enumerate", "read capture directory", dir, err)
	}

	var files []File
	var unexpected []string
	seen := map[Role]int{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == MetadataFileName {
			continue
		}
		role, ok := ResolveRole(name)
		if !ok {
			unexpected = append(unexpected, name)
			continue
		}
		seen[role]++
		files = append(files, File{Path: filepath.Join(dir, name), Role: role})
	}

	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, services.Wrap(services.ErrCapture, "enumerate", "classify files",
			"unexpected files in capture: "+strings.Join(unexpected, ", "), nil)
	}
	for _, role := range []Role{RolePage, RoleScreenshot} {
		if seen[role] != 1 {
			return nil, services.Wrap(services.ErrCapture, "enumerate", "classify files",
				fmt.Sprintf("expected exactly one %s file, found %d", role, seen[role]), nil)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Role < files[j].Role })
	return files, nil
}

// ResolveRole maps a captured file name to its role.
func ResolveRole(name string) (Role, bool) {
	base := filepath.Base(name)
	if strings.EqualFold(base, PageFileName) {
		return RolePage, true
	}
	if IsScreenshotExt(filepath.Ext(base)) {
		return RoleScreenshot, true
	}
	return 0, false
}
