// Package paths maps source files onto their location in the output tree.
//
// Everything here is pure string manipulation: no function touches the file
// system and none of them fail.
package paths

import (
	"path"
	"path/filepath"
	"strings"
)

// DestPath returns the destination of src when the tree rooted at srcRoot is
// mirrored under destRoot.
//
// When ext is non-empty the extension of the base name is replaced by ext
// (".md" -> ".html"); the directory portion is preserved either way. DestPath
// does not check that src actually lives below srcRoot. If no relative path can
// be computed at all, the base name of src is placed directly under destRoot.
func DestPath(src, srcRoot, destRoot, ext string) string {
	sub, err := filepath.Rel(srcRoot, src)
	if err != nil {
		sub = filepath.Base(src)
	}
	if ext == "" {
		return filepath.Join(destRoot, sub)
	}
	base := filepath.Base(sub)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	return filepath.Join(destRoot, filepath.Dir(sub), base)
}

// IsAbsoluteURL reports whether ref carries a scheme ("https://", "data:")
// or is protocol-relative ("//cdn.example.com/x.js"). Such references are
// emitted verbatim instead of being rewritten relative to a page.
func IsAbsoluteURL(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	i := strings.Index(ref, ":")
	if i <= 0 {
		return false
	}
	// Windows drive letters ("C:\...") are paths, not schemes.
	if i == 1 && len(ref) > 2 && (ref[2] == '\\' || ref[2] == '/') {
		return false
	}
	for j := 0; j < i; j++ {
		c := ref[j]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// RelativeHref returns a slash separated reference to target as seen from a
// document living in baseDir. Both arguments are file system paths in the same
// coordinate space (typically both under the destination root).
func RelativeHref(baseDir, target string) string {
	dir, err := filepath.Rel(baseDir, filepath.Dir(target))
	if err != nil {
		return filepath.ToSlash(target)
	}
	return path.Join(filepath.ToSlash(dir), filepath.Base(target))
}

// IsMarkdown reports whether p names a Markdown page. The extension must be
// exactly ".md": "a.MD" is a passthrough file, so it can never map onto the
// same output as "a.md".
func IsMarkdown(p string) bool {
	return filepath.Ext(p) == ".md"
}

// Within reports whether p is root itself or lies below it.
func Within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
