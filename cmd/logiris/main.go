package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/bloom"
	"github.com/fwojciec/logiris/extract"
	"github.com/fwojciec/logiris/fs"
	"github.com/fwojciec/logiris/gmail"
	"github.com/fwojciec/logiris/goquery"
	"github.com/fwojciec/logiris/htmltomarkdown"
	lohttp "github.com/fwojciec/logiris/http"
	"github.com/fwojciec/logiris/readability"
	"github.com/fwojciec/logiris/reader"
	"github.com/fwojciec/logiris/rod"
	loslog "github.com/fwojciec/logiris/slog"
	"github.com/fwojciec/logiris/sqlite"
	"github.com/fwojciec/logiris/trafilatura"
	"github.com/fwojciec/logiris/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Seen filter sizing.
const (
	seenExpectedIDs       = 100000
	seenFalsePositiveRate = 0.001
)

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Path of the persisted seen-message filter.
	SeenPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Overrides for end-to-end testing. Built from flags when nil.
	Mailbox logiris.Mailbox
	Fetcher logiris.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	dir := dataDir()
	return &Main{
		DBPath:   filepath.Join(dir, "logiris.db"),
		SeenPath: filepath.Join(dir, "seen.bloom"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("logiris"),
		kong.Description("Extract readable newsletters and articles"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'logiris --help' to see available commands")
	}
	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps.Rules, err = viper.LoadRules(cli.Rules)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	deps.Pipeline, err = newPipeline(deps.Rules, cli.Extractor)
	if err != nil {
		return err
	}
	deps.Render = newRenderer(cli.Format, deps.Rules.Origin)

	switch cmd {
	case "mail", "page", "list", "show", "export":
		if cli.DB != "" {
			m.DBPath = cli.DB
		}
		if err := os.MkdirAll(filepath.Dir(m.DBPath), 0755); err != nil {
			return err
		}
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set LOGIRIS_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.Articles = sqlite.NewArticleService(m.DB)
	}

	switch cmd {
	case "mail":
		mailbox := m.Mailbox
		if mailbox == nil {
			srv, err := newGmailService(ctx, &cli.Mail)
			if err != nil {
				return err
			}
			mailbox = gmail.NewMailbox(srv)
		}

		seen := loadSeen(m.SeenPath, deps.Logger)
		defer saveSeen(m.SeenPath, seen, deps.Logger)

		deps.Reader = &reader.Reader{
			Mailbox:     loslog.NewLoggingMailbox(mailbox, deps.Logger),
			Articles:    deps.Articles,
			Pipeline:    deps.Pipeline,
			Seen:        seen,
			MarkRead:    cli.Mail.MarkRead,
			Concurrency: cli.Mail.Concurrency,
		}

	case "page":
		deps.Reader = &reader.Reader{
			Articles: deps.Articles,
			Pipeline: deps.Pipeline,
			Limiter:  reader.NewDomainLimiter(1.0),
		}
		if cli.Page.Proxy != "" {
			client := lohttp.NewProxyClient(cli.Page.Proxy, lohttp.WithProxyTimeout(2*cli.Page.Timeout))
			deps.Reader.Proxy = loslog.NewLoggingProxyClient(client, deps.Logger)
			break
		}
		fetcher, err := m.fetcher(cli.Page.Browser, cli.Page.Timeout, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Reader.Fetcher = loslog.NewLoggingFetcher(fetcher, deps.Logger)

	case "serve":
		fetcher, err := m.fetcher(cli.Serve.Browser, cli.Serve.Timeout, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Fetcher = loslog.NewLoggingFetcher(fetcher, deps.Logger)
		deps.Limiter = reader.NewDomainLimiter(cli.Serve.RPS)

	case "export":
		var opts []fs.Option
		if cli.Format == "markdown" {
			opts = append(opts, fs.WithConverter(htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(deps.Rules.Origin))))
		}
		deps.Exporter = fs.NewWriter(cli.Export.Dir, opts...)
	}

	return kongCtx.Run(deps)
}

// fetcher returns the test override or a new HTTP or browser fetcher.
func (m *Main) fetcher(browser bool, timeout time.Duration, stderr io.Writer) (logiris.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if !browser {
		return lohttp.NewFetcher(lohttp.WithTimeout(timeout)), nil
	}
	f, err := rod.NewFetcher(rod.WithTimeout(timeout))
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return f, nil
}

// newPipeline builds the extraction pipeline for the named strategy.
func newPipeline(rules logiris.Rules, strategy string) (*extract.Pipeline, error) {
	var opts []extract.Option
	if strategy == "balanced" {
		opts = append(opts, extract.WithCaptureMode(extract.CaptureBalanced))
	}
	p, err := extract.NewPipeline(rules, opts...)
	if err != nil {
		return nil, err
	}
	switch strategy {
	case "trafilatura":
		t := trafilatura.NewExtractor()
		p.Body, p.Title = t, t
	case "readability":
		r := readability.NewExtractor()
		p.Body, p.Title = r, r
	default:
		p.Title = goquery.NewTitleExtractor()
	}
	return p, nil
}

// newRenderer returns a function converting display HTML to format.
func newRenderer(format, origin string) func(string) (string, error) {
	switch format {
	case "markdown":
		conv := htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(origin))
		return conv.Convert
	case "text":
		return goquery.Text
	default:
		return func(html string) (string, error) { return html, nil }
	}
}

// newGmailService authenticates with a static access token or with a saved
// OAuth token refreshed through the client secret.
func newGmailService(ctx context.Context, c *MailCmd) (*gmailv1.Service, error) {
	switch {
	case c.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token})
		return gmailv1.NewService(ctx, option.WithTokenSource(ts))

	case c.Credentials != "" && c.TokenFile != "":
		secret, err := os.ReadFile(c.Credentials)
		if err != nil {
			return nil, fmt.Errorf("read client secret: %w", err)
		}
		config, err := google.ConfigFromJSON(secret, gmailv1.GmailModifyScope)
		if err != nil {
			return nil, fmt.Errorf("parse client secret: %w", err)
		}
		f, err := os.Open(c.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		defer f.Close()
		var tok oauth2.Token
		if err := json.NewDecoder(f).Decode(&tok); err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		return gmailv1.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, &tok)))

	default:
		return nil, logiris.Errorf(logiris.EINVALID, "set LOGIRIS_GMAIL_TOKEN or pass --credentials and --token-file")
	}
}

// loadSeen reads the persisted seen filter. A missing or unreadable file
// starts a fresh filter.
func loadSeen(path string, logger *slog.Logger) *bloom.Filter {
	seen := bloom.NewFilter(seenExpectedIDs, seenFalsePositiveRate)
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("seen filter unavailable", "path", path, "err", err)
		}
		return seen
	}
	defer f.Close()
	if _, err := seen.ReadFrom(f); err != nil {
		logger.Warn("seen filter unreadable, starting fresh", "path", path, "err", err)
	}
	return seen
}

func saveSeen(path string, seen *bloom.Filter, logger *slog.Logger) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("saving seen filter", "path", path, "err", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("saving seen filter", "path", path, "err", err)
		return
	}
	defer f.Close()
	if _, err := seen.WriteTo(f); err != nil {
		logger.Warn("saving seen filter", "path", path, "err", err)
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".logiris")
}
