package options

import (
	"path"
	"strings"
)

// ResolveFormat returns the output format for collection. The last option
// set naming an output wins; otherwise the format is inferred from the
// extension of objectPath.
func ResolveFormat(collection Collection, objectPath string) (Format, error) {
	for i := len(collection) - 1; i >= 0; i-- {
		if collection[i].Output != "" {
			return collection[i].Output, nil
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(objectPath), "."))
	if ext == "" {
		return "", MissingOutputFormatError{Path: objectPath}
	}
	f, ok := formatsByName[ext]
	if !ok {
		return "", InvalidOutputFormatError{Format: ext}
	}
	return f, nil
}
