package handoff

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/angelmondragon/farmstore/pkg/env"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

const (
	ModeBrowser = "browser"
	ModeLog     = "log"
)

// Opener hands a payment URL to something outside the process.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// New picks the opener for the configured mode.
func New(mode string, logg *logger.Logger) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeBrowser, "":
		return NewSystemBrowser(logg), nil
	case ModeLog:
		return NewLogOpener(logg), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown handoff mode").
		WithDetails(map[string]string{"mode": mode})
}

// starter launches a process without waiting for it.
type starter func(name string, args ...string) error

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// SystemBrowser opens URLs with the platform's default handler, or
// $BROWSER when set. It returns once the handler has been launched.
type SystemBrowser struct {
	goos  string
	start starter
	logg  *logger.Logger
}

func NewSystemBrowser(logg *logger.Logger) *SystemBrowser {
	if logg == nil {
		logg = logger.Nop()
	}
	return &SystemBrowser{goos: runtime.GOOS, start: startDetached, logg: logg}
}

func (b *SystemBrowser) Open(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	name, args := b.command(rawURL)
	if err := b.start(name, args...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "launch browser")
	}
	b.logg.Info(b.logg.WithField(ctx, "command", name), "payment page opened")
	return nil
}

func (b *SystemBrowser) command(rawURL string) (string, []string) {
	if browser := env.First("", "BROWSER"); browser != "" {
		return browser, []string{rawURL}
	}
	switch b.goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	}
	return "xdg-open", []string{rawURL}
}

// LogOpener only records the URL. It serves headless runs where a person
// copies the link by hand.
type LogOpener struct {
	logg *logger.Logger
}

func NewLogOpener(logg *logger.Logger) *LogOpener {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogOpener{logg: logg}
}

func (o *LogOpener) Open(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	o.logg.Info(o.logg.WithField(ctx, "payment_url", rawURL), "open this payment link to continue")
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment url must be an absolute http(s) url").
			WithDetails(map[string]string{"url": rawURL})
	}
	return nil
}
