package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// Kind is the store kind holding accepted translations for a project.
const Kind = "dictionary"

// ErrInvalidDocument is returned when a document path cannot be turned into
// a project key.
var ErrInvalidDocument = zerr.New("invalid document path")

// ErrInvalidAddress is returned for project keys or kinds that would escape
// or alias another address.
var ErrInvalidAddress = zerr.New("invalid dictionary address")

// ProjectKey derives the project key of a document: the cleaned path with
// its root or volume dropped and its components joined with '_'.
//
// Distinct paths can collide ("a_b/c" and "a/b_c" both give "a_b_c", and a
// relative path collides with its absolute twin). Such documents share a
// dictionary.
func ProjectKey(documentPath string) (string, error) {
	if strings.TrimSpace(documentPath) == "" || strings.ContainsRune(documentPath, 0) {
		return "", zerr.With(fmt.Errorf("%w: %q", ErrInvalidDocument, documentPath), "document", documentPath)
	}
	clean := filepath.Clean(documentPath)
	vol := filepath.VolumeName(clean)
	clean = clean[len(vol):]

	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '/' || r == filepath.Separator })
	if v := strings.Trim(vol, `\/:`); v != "" {
		parts = append([]string{strings.ReplaceAll(v, `\`, "_")}, parts...)
	}
	key := strings.Join(parts, "_")
	if err := validateSegment(key); err != nil {
		return "", zerr.With(fmt.Errorf("%w: %q", ErrInvalidDocument, documentPath), "document", documentPath)
	}
	return key, nil
}

func validateSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`+"\x00") {
		return zerr.With(fmt.Errorf("%w: %q", ErrInvalidAddress, s), "segment", s)
	}
	return nil
}

// DefaultRoot is the dictionaries directory under the user's cache
// directory, ~/.cache/dict-mcp/dictionaries.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", zerr.Wrap(err, "finding base directory for dictionaries")
	}
	if home == "" {
		return "", zerr.New("finding base directory for dictionaries: empty home directory")
	}
	return filepath.Join(home, ".cache", "dict-mcp", "dictionaries"), nil
}

// Layout maps language pairs and project keys to store paths under Root:
//
//	Root/{source}-{target}/{project}/{kind}
type Layout struct {
	Root string
}

// PairDir is the directory holding every project dictionary of pair.
func (l Layout) PairDir(pair LanguagePair) (string, error) {
	if l.Root == "" {
		return "", zerr.With(fmt.Errorf("%w: empty root", ErrInvalidAddress), "pair", pair.String())
	}
	if err := pair.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(l.Root, pair.String()), nil
}

// Address is the store path of kind for project under pair.
func (l Layout) Address(pair LanguagePair, project, kind string) (string, error) {
	dir, err := l.PairDir(pair)
	if err != nil {
		return "", err
	}
	if err := validateSegment(project); err != nil {
		return "", zerr.Wrap(err, "project key")
	}
	if err := validateSegment(kind); err != nil {
		return "", zerr.Wrap(err, "kind")
	}
	return filepath.Join(dir, project, kind), nil
}

// DocumentAddress is the dictionary path for the document at documentPath.
func (l Layout) DocumentAddress(pair LanguagePair, documentPath string) (string, error) {
	project, err := ProjectKey(documentPath)
	if err != nil {
		return "", err
	}
	return l.Address(pair, project, Kind)
}
