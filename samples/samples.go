// Package samples holds example tape programs.
package samples

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed programs/*.bf
var programs embed.FS

// Names returns the names of the bundled programs, sorted.
func Names() []string {
	entries, err := programs.ReadDir("programs")
	if err != nil {
		panic(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".bf"))
	}
	sort.Strings(names)

	return names
}

// Source returns the source of the named program.
func Source(name string) (string, error) {
	data, err := programs.ReadFile(path.Join("programs", name+".bf"))
	if err != nil {
		return "", err
	}

	return string(data), nil
}
