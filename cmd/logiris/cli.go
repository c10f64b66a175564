package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/extract"
	"github.com/fwojciec/logiris/reader"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Rules    logiris.Rules
	Pipeline *extract.Pipeline
	Articles logiris.ArticleService
	Reader   *reader.Reader
	Fetcher  logiris.Fetcher
	Limiter  logiris.DomainLimiter

	// Render converts display HTML to the selected output format.
	Render func(html string) (string, error)

	// Exporter writes articles for the export command.
	Exporter logiris.ArticleWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Rules     string `help:"Extraction rules file (YAML, JSON or TOML)" env:"LOGIRIS_RULES" type:"path"`
	DB        string `help:"Article database path" env:"LOGIRIS_DB" type:"path"`
	Format    string `short:"f" enum:"html,markdown,text" default:"html" help:"Output format (html, markdown, text)"`
	Extractor string `short:"x" enum:"selectors,balanced,trafilatura,readability" default:"selectors" help:"Page body extraction strategy"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`

	Mail   MailCmd   `cmd:"" help:"Read unread newsletters from Gmail"`
	Decode DecodeCmd `cmd:"" help:"Decode a Gmail API message from a JSON file"`
	Eml    EmlCmd    `cmd:"" help:"Extract a newsletter from a raw RFC 822 file"`
	Page   PageCmd   `cmd:"" help:"Fetch and extract an article page"`
	Serve  ServeCmd  `cmd:"" help:"Run the article extraction proxy"`
	List   ListCmd   `cmd:"" help:"List stored articles"`
	Show   ShowCmd   `cmd:"" help:"Print a stored article"`
	Export ExportCmd `cmd:"" help:"Write stored articles to a directory"`
}

// MailCmd is the "mail" subcommand.
type MailCmd struct {
	Query       string `short:"q" default:"from:bloomberg.com is:unread newer_than:2d" help:"Gmail search query"`
	PageToken   string `help:"Continue from a page token printed by an earlier run"`
	Pages       int    `default:"1" help:"Number of result pages to read"`
	MarkRead    bool   `help:"Mark stored messages as read"`
	Concurrency int    `short:"c" default:"8" help:"Concurrent message fetch limit"`
	Print       bool   `short:"p" help:"Print stored articles"`
	Token       string `env:"LOGIRIS_GMAIL_TOKEN" help:"OAuth2 access token for Gmail"`
	Credentials string `type:"path" help:"OAuth client secret JSON, used with --token-file"`
	TokenFile   string `type:"path" help:"Saved OAuth token JSON, used with --credentials"`
}

// DecodeCmd is the "decode" subcommand.
type DecodeCmd struct {
	File  string `arg:"" type:"existingfile" help:"JSON file with a Gmail message or bare payload"`
	Links bool   `help:"Print article links instead of the body"`
}

// EmlCmd is the "eml" subcommand.
type EmlCmd struct {
	File string `arg:"" type:"existingfile" help:"Raw RFC 822 message file"`
}

// PageCmd is the "page" subcommand.
type PageCmd struct {
	URL     string        `arg:"" help:"Article URL"`
	Cookies string        `env:"LOGIRIS_COOKIES" help:"Cookie header sent with the request"`
	Proxy   string        `env:"LOGIRIS_PROXY" help:"Extraction proxy endpoint"`
	Browser bool          `short:"b" help:"Fetch with a headless browser"`
	Timeout time.Duration `short:"t" default:"15s" help:"Fetch timeout"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string        `default:":8080" help:"Listen address"`
	RPS     float64       `name:"rps" default:"1" help:"Upstream requests per second per host"`
	Browser bool          `short:"b" help:"Fetch with a headless browser"`
	Timeout time.Duration `short:"t" default:"15s" help:"Fetch timeout"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Source string `enum:"mail,web,all" default:"all" help:"Only list articles from this source (mail, web, all)"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of articles"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Article ID"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir    string `arg:"" type:"path" help:"Output directory"`
	Source string `enum:"mail,web,all" default:"all" help:"Only export articles from this source (mail, web, all)"`
}
