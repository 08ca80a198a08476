package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ucsc-snapshots/internal/bed"
	"ucsc-snapshots/internal/ucsc"
)

const dirPrefix = "ucsc-snapshots-hgsid-"

// Annotation is a key/value pair appended to the output directory name. The
// order of annotations is significant, different orders give different
// directories.
type Annotation struct {
	Key   string
	Value string
}

// ParseAnnotation parses `key=value`.
func ParseAnnotation(raw string) (Annotation, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !ok || key == "" || value == "" {
		return Annotation{}, fmt.Errorf("invalid annotation %q, expected key=value", raw)
	}
	return Annotation{Key: key, Value: value}, nil
}

// Dir returns the output directory for a session under `root`.
func Dir(root, hgsid string, annotations []Annotation) string {
	var name strings.Builder
	name.WriteString(dirPrefix)
	name.WriteString(sanitize(hgsid))
	for _, a := range annotations {
		name.WriteString("-")
		name.WriteString(sanitize(a.Key))
		name.WriteString("-")
		name.WriteString(sanitize(a.Value))
	}
	return filepath.Join(root, name.String())
}

// Stem returns the file name without extension: [name-][score-]chrom-start-end.
// name and score are left out when they are bed.Missing.
func Stem(pos ucsc.Position, name, score string) string {
	stem := strings.ReplaceAll(string(pos), ":", "-")
	stem = strings.ReplaceAll(stem, string(filepath.Separator), "_")
	stem = strings.ReplaceAll(stem, "/", "_")
	if score != bed.Missing && score != "" {
		stem = sanitize(score) + "-" + stem
	}
	if name != bed.Missing && name != "" {
		stem = sanitize(name) + "-" + stem
	}
	return stem
}

// Filename returns the output path for one image, creating its directory if it
// does not exist yet.
func Filename(
	root, hgsid string,
	pos ucsc.Position,
	name, score string,
	annotations []Annotation,
	format ucsc.Format,
) (string, error) {
	dir := Dir(root, hgsid, annotations)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", Stem(pos, name, score), format.Ext())), nil
}

// sanitize makes a user supplied field safe to join with dashes into a path
// component: '-' and anything outside [A-Za-z0-9._+] becomes '_'.
func sanitize(field string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '+':
			return r
		}
		return '_'
	}, field)
}
