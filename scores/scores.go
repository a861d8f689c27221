// Package scores bundles the example MusicXML documents shipped with the
// practice tool. Documents are opaque: they are returned exactly as stored.
package scores

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/jsphweid/practice/util"
)

const Extension = ".musicxml"

//go:embed fixtures/*.musicxml
var fixtures embed.FS

var all = load()

func load() map[string]string {
	res := make(map[string]string)
	entries, err := fs.ReadDir(fixtures, "fixtures")
	if err != nil {
		panic("Could not read bundled scores: " + err.Error())
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		data, err := fixtures.ReadFile(path.Join("fixtures", name))
		if err != nil {
			panic("Could not read bundled score " + name + ": " + err.Error())
		}
		res[name] = string(data)
	}
	return res
}

// Names returns the bundled score names, sorted.
func Names() []string {
	return util.GetKeysSorted(all)
}

func Get(name string) (string, bool) {
	content, ok := all[name]
	return content, ok
}

// All returns a copy of the name to document mapping.
func All() map[string]string {
	res := make(map[string]string, len(all))
	for k, v := range all {
		res[k] = v
	}
	return res
}
