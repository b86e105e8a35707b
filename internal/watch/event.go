// Package watch keeps the output tree consistent with the source trees while
// the dev server runs. File system events are classified by area and handled
// one at a time per area.
package watch

import (
	"path/filepath"
	"strings"
)

// Area is the source tree an event belongs to.
type Area string

const (
	AreaPages  Area = "pages"
	AreaAssets Area = "assets"
	AreaStyles Area = "styles"
)

// Areas lists every area in a fixed order.
var Areas = []Area{AreaPages, AreaAssets, AreaStyles}

// Op is what happened to the path.
type Op string

const (
	OpAdd    Op = "add"
	OpChange Op = "change"
	OpUnlink Op = "unlink"
	// OpResync rescans the whole pages tree; Path is ignored.
	OpResync Op = "resync"
)

// Event is one change to reconcile.
type Event struct {
	Area Area
	Op   Op
	Path string
}

// shouldIgnore reports paths that never trigger reconciliation: hidden files
// and the temp files editors leave behind.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
