// Package dictionary supplies the word lists used by the login form detector.
//
// Dictionaries are read from their backing store on every Load. Callers that
// want caching have to add it themselves.
package dictionary

import (
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

const (
	// LoginAction lists words found in the action of a login form.
	LoginAction = "loginaction"
	// Username lists words found in the name or id of a username field.
	Username = "username"
)

// Names returns every dictionary the detector needs.
func Names() []string {
	return []string{LoginAction, Username}
}

// ErrNotFound is returned when the named dictionary does not exist in the store.
var ErrNotFound = errors.New("dictionary not found")

// Dictionary is an ordered list of lowercase words.
type Dictionary []string

// Store loads dictionaries by name.
type Store interface {
	Load(ctx context.Context, name string) (Dictionary, error)
}

//go:embed words/*.txt
var embedded embed.FS

// FSStore reads "<name>.txt" files from a file system, one word per line.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore returns a store backed by fsys.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// NewEmbeddedStore returns a store backed by the word lists compiled into the binary.
func NewEmbeddedStore() *FSStore {
	sub, err := fs.Sub(embedded, "words")
	if err != nil {
		panic(err)
	}
	return NewFSStore(sub)
}

// NewDirStore returns a store reading word lists from dir.
func NewDirStore(dir string) *FSStore {
	return NewFSStore(os.DirFS(dir))
}

func (s *FSStore) Load(ctx context.Context, name string) (Dictionary, error) {
	f, err := s.fsys.Open(name + ".txt")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load dictionary %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("load dictionary %q: %w", name, err)
	}
	defer f.Close()

	words, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %q: %w", name, err)
	}
	return words, nil
}

// readWords returns the trimmed, lowercased lines of r. Blank lines and
// lines starting with '#' are dropped: an empty entry would match any text.
func readWords(r io.Reader) (Dictionary, error) {
	var words Dictionary
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := normalizeWord(scanner.Text())
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func normalizeWord(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	return strings.ToLower(line)
}

// Embedded returns the named built-in word list. It is used to seed other stores.
func Embedded(ctx context.Context, name string) (Dictionary, error) {
	return NewEmbeddedStore().Load(ctx, name)
}
