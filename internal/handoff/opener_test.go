package handoff

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

type recordedCommand struct {
	name string
	args []string
}

func newTestBrowser(goos string, startErr error) (*SystemBrowser, *[]recordedCommand) {
	var calls []recordedCommand
	b := NewSystemBrowser(nil)
	b.goos = goos
	b.start = func(name string, args ...string) error {
		calls = append(calls, recordedCommand{name: name, args: args})
		return startErr
	}
	return b, &calls
}

func TestSystemBrowserCommands(t *testing.T) {
	t.Setenv("BROWSER", "")
	cases := []struct {
		goos string
		want string
	}{
		{"linux", "xdg-open"},
		{"darwin", "open"},
		{"windows", "rundll32"},
	}
	for _, tc := range cases {
		b, calls := newTestBrowser(tc.goos, nil)
		if err := b.Open(context.Background(), "https://pay.example/101"); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.goos, err)
		}
		if len(*calls) != 1 || (*calls)[0].name != tc.want {
			t.Fatalf("%s: unexpected commands %+v", tc.goos, *calls)
		}
		args := (*calls)[0].args
		if args[len(args)-1] != "https://pay.example/101" {
			t.Fatalf("%s: url must be the last argument, got %v", tc.goos, args)
		}
	}
}

func TestSystemBrowserHonoursBrowserEnv(t *testing.T) {
	t.Setenv("BROWSER", "firefox")
	b, calls := newTestBrowser("linux", nil)
	if err := b.Open(context.Background(), "https://pay.example/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if (*calls)[0].name != "firefox" {
		t.Fatalf("expected $BROWSER, got %s", (*calls)[0].name)
	}
}

func TestSystemBrowserErrors(t *testing.T) {
	b, calls := newTestBrowser("linux", errors.New("exec: not found"))
	err := b.Open(context.Background(), "https://pay.example/1")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	for _, bad := range []string{"", "not a url", "javascript:alert(1)", "ftp://pay.example/1", "/relative"} {
		if err := b.Open(context.Background(), bad); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("%q: expected validation error, got %v", bad, err)
		}
	}
	if len(*calls) != 1 {
		t.Fatalf("invalid urls must not launch anything, got %d launches", len(*calls))
	}
}

func TestLogOpener(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	if err := NewLogOpener(logg).Open(context.Background(), "https://pay.example/9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "https://pay.example/9") {
		t.Fatalf("expected url in log output, got %s", buf.String())
	}
}

func TestNew(t *testing.T) {
	if o, err := New("log", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := o.(*LogOpener); !ok {
		t.Fatalf("expected log opener, got %T", o)
	}
	if o, err := New("", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := o.(*SystemBrowser); !ok {
		t.Fatalf("expected system browser, got %T", o)
	}
	if _, err := New("carrier-pigeon", nil); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
