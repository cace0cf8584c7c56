// Package pathx validates user-supplied names and builds slash-separated
// paths that stay confined below a group's storage directory.
package pathx

import (
	"path"
	"strings"
)

// prohibited lists characters that are not allowed in group, file or
// directory names on common platforms.
const prohibited = `<>:"/\|?*`

const (
	// Current and Parent are the navigation pseudo-entries accepted by cd.
	Current = "."
	Parent  = ".."
)

// ValidName reports whether s is usable as a group, file or directory name:
// not empty, not made only of spaces, and free of prohibited characters.
func ValidName(s string) bool {
	if strings.TrimLeft(s, " ") == "" {
		return false
	}
	return !strings.ContainsAny(s, prohibited)
}

// ValidEntry is ValidName minus the navigation pseudo-entries. Anything that
// creates or removes an entry must pass it, so ".." can never be used to
// reach outside the working directory.
func ValidEntry(s string) bool {
	return ValidName(s) && s != Current && s != Parent
}

// Join appends name to the relative directory dir. An empty dir is the group
// root.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Up drops the last segment of the relative directory dir. ok is false when
// dir is already the group root.
func Up(dir string) (parent string, ok bool) {
	if dir == "" {
		return "", false
	}
	i := strings.LastIndexByte(dir, '/')
	if i < 0 {
		return "", true
	}
	return dir[:i], true
}

// Resolve returns the storage-relative path of rel inside the group stored
// under groupPath. rel is a relative directory built with Join; the result
// never leaves groupPath because every segment was checked by ValidEntry.
func Resolve(groupPath, rel string) string {
	if rel == "" {
		return groupPath
	}
	return path.Join(groupPath, rel)
}
