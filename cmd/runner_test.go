package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/shared"
	tu "github.com/avelara/portify/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func testExport(total int) (*catalog.PlaylistExport, map[string][]catalog.Track) {
	export := &catalog.PlaylistExport{
		Playlist: catalog.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: total},
	}
	results := map[string][]catalog.Track{}

	for n := 0; n < total; n++ {
		track := catalog.Track{
			ID:          fmt.Sprintf("src%02d", n),
			Title:       fmt.Sprintf("Song %02d", n),
			Artists:     []string{fmt.Sprintf("Artist %02d", n)},
			DurationSec: 180,
		}
		export.Tracks = append(export.Tracks, track)

		candidate := track
		candidate.ID = fmt.Sprintf("dst%02d", n)
		results[fmt.Sprintf("song %02d artist %02d", n, n)] = []catalog.Track{candidate}
	}

	return export, results
}

// runApp executes one CLI invocation against a runner, capturing the exit
// code instead of terminating the test process.
func runApp(t *testing.T, runner *Runner, args ...string) (int, error) {
	t.Helper()

	exitCode := 0
	prevExiter := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	defer func() { cli.OsExiter = prevExiter }()

	app := &cli.Command{Name: "portify", Commands: runner.register()}
	err := app.Run(context.Background(), append([]string{"portify"}, args...))

	if exitCode == 0 {
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			exitCode = coder.ExitCode()
		}
	}

	return exitCode, err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockReader{}
			dest := &tu.MockWriter{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Source: source,
				Dest:   dest,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.dest != dest {
				t.Error("expected dest to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
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

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, io.Discard)
			runner := NewRunner(RunnerOpts{Output: &lw})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error when the trailing newline cannot be written")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		runner = NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("register exposes all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "migrate", "cache", "tui"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})
}

func TestMigrateRun(t *testing.T) {
	t.Run("full migration writes a summary", func(t *testing.T) {
		export, results := testExport(3)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Source: &tu.MockReader{Export: export},
			Dest:   &tu.MockWriter{Results: results},
			Output: output,
		})

		code, err := runApp(t, runner, "migrate", "run", "--source", "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != 0 {
			t.Errorf("expected exit code 0, got %d", code)
		}

		out := output.String()
		for _, want := range []string{"Migration Complete!", "Total tracks: 3", "Matched: 3", "Success rate: 100.0%"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("partial match exits with code 2", func(t *testing.T) {
		export, results := testExport(3)
		delete(results, "song 01 artist 01")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Source: &tu.MockReader{Export: export},
			Dest:   &tu.MockWriter{Results: results},
			Output: output,
		})

		code, _ := runApp(t, runner, "migrate", "run", "--source", "pl1")
		if code != 2 {
			t.Errorf("expected exit code 2, got %d", code)
		}
		if !strings.Contains(output.String(), "Not found: 1") {
			t.Errorf("expected unmatched count in output:\n%s", output.String())
		}
	})

	t.Run("destination not authenticated", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Source: &tu.MockReader{},
			Output: &bytes.Buffer{},
		})

		_, err := runApp(t, runner, "migrate", "run", "--source", "pl1")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Source: &tu.MockReader{},
			Dest:   &tu.MockWriter{},
			Output: &bytes.Buffer{},
		})

		_, err := runApp(t, runner, "migrate", "run", "--source", "pl1", "--threshold", "1.5")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("source failure surfaces the error", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Source: &tu.MockReader{Err: errors.New("proxy down")},
			Dest:   &tu.MockWriter{},
			Output: &bytes.Buffer{},
		})

		_, err := runApp(t, runner, "migrate", "run", "--source", "pl1")
		if !errors.Is(err, shared.ErrSourceFetch) {
			t.Errorf("expected ErrSourceFetch, got %v", err)
		}
	})
}

func TestMigratePreview(t *testing.T) {
	export, results := testExport(2)
	delete(results, "song 01 artist 01")

	writer := &tu.MockWriter{Results: results}
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Source: &tu.MockReader{Export: export},
		Dest:   writer,
		Output: output,
	})

	code, _ := runApp(t, runner, "migrate", "preview", "--source", "pl1")
	if code != 2 {
		t.Errorf("expected exit code 2 for partial preview, got %d", code)
	}

	if writer.CreateCalls != 0 || len(writer.Appended) != 0 {
		t.Error("preview must never touch the destination playlist")
	}

	out := output.String()
	if !strings.Contains(out, "1 of 2 tracks matched") {
		t.Errorf("expected match summary, got:\n%s", out)
	}
	if !strings.Contains(out, "no search results") {
		t.Errorf("expected miss reason in output:\n%s", out)
	}
}

func TestCacheCommandsWithoutDatabase(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	if _, err := runApp(t, runner, "cache", "stats"); err == nil {
		t.Error("expected error without a database")
	}
	if _, err := runApp(t, runner, "cache", "clear"); err == nil {
		t.Error("expected error without a database")
	}
	if _, err := runApp(t, runner, "cache", "runs"); err == nil {
		t.Error("expected error without a database")
	}
}

func TestAuthStatus(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.TokenPath = filepath.Join(t.TempDir(), "token.json")
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

		_, err := runApp(t, runner, "auth", "status")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		token := &oauth2.Token{
			AccessToken:  "at",
			RefreshToken: "rt",
			Expiry:       time.Now().Add(time.Hour),
		}
		if err := catalog.SaveToken(path, token); err != nil {
			t.Fatal(err)
		}

		config := shared.DefaultConfig()
		config.Credentials.Spotify.TokenPath = path
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if _, err := runApp(t, runner, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Token found") {
			t.Errorf("expected token status in output:\n%s", output.String())
		}
	})

	t.Run("expired token without refresh token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		token := &oauth2.Token{
			AccessToken: "at",
			Expiry:      time.Now().Add(-time.Hour),
		}
		if err := catalog.SaveToken(path, token); err != nil {
			t.Fatal(err)
		}

		config := shared.DefaultConfig()
		config.Credentials.Spotify.TokenPath = path
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

		_, err := runApp(t, runner, "auth", "status")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}
