package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type noopScraper struct{}

func (noopScraper) Scrape(ctx context.Context) ([]models.RawShow, error) { return nil, nil }

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return nil
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			scraper := noopScraper{}
			mailer := noopMailer{}

			spotify, err := services.NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_id",
				ClientSecret: "test_secret",
				RedirectURI:  "http://localhost:8080/auth/callback",
			})
			if err != nil {
				t.Fatalf("failed to create spotify service: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Spotify: spotify,
				Scraper: scraper,
				Mailer:  mailer,
				Logger:  logger,
				Output:  output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.scraper != scraper {
				t.Error("expected scraper to be set")
			}
			if runner.mailer != mailer {
				t.Error("expected mailer to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil scraper builds one from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Scraper: nil})

			if runner.scraper == nil {
				t.Error("expected default scraper to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.writePlain("hello %s", "world")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if result != "hello world" {
			t.Errorf("expected 'hello world', got %q", result)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 6 {
			t.Errorf("expected 6 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"setup", "serve", "ingest", "match", "digest", "sync"} {
			if !names[name] {
				t.Errorf("expected command %q to be registered", name)
			}
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("missing file falls back to runner config", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			loaded := runner.loadConfig(filepath.Join(t.TempDir(), "missing.toml"))

			if loaded != config {
				t.Error("expected runner config when file is absent")
			}
		})

		t.Run("existing file is loaded", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			contents := "[database]\npath = \"custom.db\"\n"
			if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{})
			loaded := runner.loadConfig(path)

			if loaded.Database.Path != "custom.db" {
				t.Errorf("expected custom database path, got %q", loaded.Database.Path)
			}
		})
	})
}
