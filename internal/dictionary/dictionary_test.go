package dictionary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestFSStoreLoad(t *testing.T) {
	ctx := context.Background()
	store := NewFSStore(fstest.MapFS{
		"test.txt":   {Data: []byte("test1\ntest2\ntest3")},
		"mixed.txt":  {Data: []byte("# comment\n  SignIn \n\n\tAuth\n")},
		"empty.txt":  {Data: []byte("")},
		"blanks.txt": {Data: []byte("\n \n\t\n")},
	})

	testCases := []struct {
		name      string
		dict      string
		wantWords Dictionary
		wantErr   error
	}{
		{
			name:      "Plain word list",
			dict:      "test",
			wantWords: Dictionary{"test1", "test2", "test3"},
		},
		{
			name:      "Comments blanks and case",
			dict:      "mixed",
			wantWords: Dictionary{"signin", "auth"},
		},
		{
			name:      "Empty file",
			dict:      "empty",
			wantWords: nil,
		},
		{
			name:      "Only blank lines",
			dict:      "blanks",
			wantWords: nil,
		},
		{
			name:    "Missing dictionary",
			dict:    "tmp",
			wantErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			words, err := store.Load(ctx, tc.dict)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected error %v, but got: %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}
			if !reflect.DeepEqual(words, tc.wantWords) {
				t.Errorf("Load() got = %v, want %v", words, tc.wantWords)
			}
		})
	}
}

func TestEmbeddedStoreHasDetectorDictionaries(t *testing.T) {
	store := NewEmbeddedStore()

	for _, name := range Names() {
		words, err := store.Load(context.Background(), name)
		if err != nil {
			t.Fatalf("Expected embedded dictionary %q, but got error: %v", name, err)
		}
		if len(words) == 0 {
			t.Errorf("Expected embedded dictionary %q to have words", name)
		}
		for _, w := range words {
			if w == "" {
				t.Errorf("Dictionary %q contains an empty entry", name)
			}
		}
	}
}

func TestDirStoreReloadsOnEveryLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Username+".txt")
	if err := os.WriteFile(path, []byte("user\n"), 0o644); err != nil {
		t.Fatalf("Failed to write dictionary: %v", err)
	}

	store := NewDirStore(dir)
	ctx := context.Background()

	if _, err := store.Load(ctx, Username); err != nil {
		t.Fatalf("Expected no error on first load, but got: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove dictionary: %v", err)
	}

	if _, err := store.Load(ctx, Username); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after removal, but got: %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, redisURL, "html-analyzer-test:")
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	defer store.Close()

	if err := store.Seed(ctx, "words", Dictionary{"Login", "auth"}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	defer store.client.Del(ctx, store.key("words"))

	words, err := store.Load(ctx, "words")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(words, Dictionary{"login", "auth"}) {
		t.Errorf("Load() got = %v", words)
	}

	if _, err := store.Load(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, but got: %v", err)
	}
}
