// Package gamedata provides the embedded species roster, the element
// effectiveness table and the stat providers derived from them.
package gamedata

import (
	"embed"
	"io/fs"
)

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS

// FS returns the embedded filesystem containing game data.
func FS() fs.FS {
	return dataFS
}
