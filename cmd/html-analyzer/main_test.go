package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"html-analyzer/internal/config"
)

func TestAnalyzeCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html><title>CLI</title><h1>a</h1><form><input type="password"></form>`)
	}))
	defer server.Close()

	var out bytes.Buffer
	cmd := newRootCmd(&config.Config{ServerPort: "8080", LogLevel: "error", LogFormat: "text", DictionarySource: config.DictionaryEmbedded})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", server.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}

	var result struct {
		Succeeded    bool           `json:"succeeded"`
		DocumentType string         `json:"documentType"`
		Title        string         `json:"title"`
		Headings     map[string]int `json:"headingCounts"`
		HasLoginForm bool           `json:"hasLoginForm"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Expected JSON output, but got %q: %v", out.String(), err)
	}
	if !result.Succeeded || result.DocumentType != "HTML5" || result.Title != "CLI" || result.Headings["h1"] != 1 || !result.HasLoginForm {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestAnalyzeCommandFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var out bytes.Buffer
	cmd := newRootCmd(&config.Config{ServerPort: "8080", LogLevel: "error", LogFormat: "text", DictionarySource: config.DictionaryEmbedded})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", server.URL})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an error for a missing page")
	}
	if !bytes.Contains(out.Bytes(), []byte(`"message": "URL_NOT_FOUND"`)) {
		t.Errorf("Expected URL_NOT_FOUND in output, but got %s", out.String())
	}
}

func TestInvalidDictionarySource(t *testing.T) {
	cmd := newRootCmd(&config.Config{ServerPort: "8080", LogFormat: "json", DictionarySource: "s3"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "https://example.com"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an error for an unknown dictionary source")
	}
}
