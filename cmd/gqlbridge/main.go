package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gqlbridge/gqlbridge/internal/batch"
	"github.com/gqlbridge/gqlbridge/internal/eventbus"
	"github.com/gqlbridge/gqlbridge/internal/otel"
	"github.com/gqlbridge/gqlbridge/internal/schema"
	"github.com/gqlbridge/gqlbridge/internal/server"
)

const rootUsage = `gqlbridge — serverless GraphQL schema introspection

USAGE:
  gqlbridge <command> [flags]

COMMANDS:
  run              Evaluate introspection queries against an SDL document
  render           Parse an SDL document and print its canonical form
  serve            Run the HTTP introspection endpoint
  help             Show help for any command
`

const runUsage = `run FLAGS:
  -sdl <file>      SDL document to introspect, or - for stdin (required)
  -query <file>    Introspection query file, or - for stdin. Repeatable;
                   queries are evaluated in flag order
  -pretty          Pretty-print the JSON outcome
  (Exits non-zero when the outcome is the error branch)
`

const renderUsage = `render FLAGS:
  -sdl <file>      SDL document to parse, or - for stdin (required)
  -out <file>      Write the canonical SDL to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>        HTTP listen address (default: :8080)
  -server.pretty             Pretty-print JSON responses
  -server.timeout <duration> Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>   Request body size limit, 0 for unlimited (default: 0)
  -otel.endpoint <addr>      OTLP collector endpoint
  -otel.service <name>       OpenTelemetry service name (default: gqlbridge)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("gqlbridge", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "run":
		return cmdRun(cmdArgs)
	case "render":
		return cmdRender(cmdArgs)
	case "serve":
		return cmdServe(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "run":
		fmt.Print(runUsage)
	case "render":
		fmt.Print(renderUsage)
	case "serve":
		fmt.Print(serveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// readInput loads a file argument, treating - as stdin.
func readInput(name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func cmdRun(args []string) error {
	sdlFile := ""
	pretty := false
	var queryFiles stringListFlag

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&sdlFile, "sdl", sdlFile, "SDL document to introspect")
	fs.Var(&queryFiles, "query", "Introspection query file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON outcome")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, runUsage)
		return err
	}
	if sdlFile == "" {
		fmt.Fprint(os.Stderr, runUsage)
		return fmt.Errorf("-sdl is required")
	}

	sdl, err := readInput(sdlFile)
	if err != nil {
		return fmt.Errorf("read sdl: %w", err)
	}
	queries := make([]string, 0, len(queryFiles))
	for _, qf := range queryFiles {
		q, err := readInput(qf)
		if err != nil {
			return fmt.Errorf("read query: %w", err)
		}
		queries = append(queries, q)
	}

	bridge := batch.New(batch.NewSchemaEngine())
	outcome := bridge.Run(context.Background(), sdl, queries)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(outcome); err != nil {
		return err
	}
	if outcome.Failed() {
		return fmt.Errorf("batch failed with %d error(s)", len(outcome.Err))
	}
	return nil
}

func cmdRender(args []string) error {
	sdlFile := ""
	outFile := ""
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&sdlFile, "sdl", sdlFile, "SDL document to parse")
	fs.StringVar(&outFile, "out", outFile, "Write the canonical SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderUsage)
		return err
	}
	if sdlFile == "" {
		fmt.Fprint(os.Stderr, renderUsage)
		return fmt.Errorf("-sdl is required")
	}

	sdl, err := readInput(sdlFile)
	if err != nil {
		return fmt.Errorf("read sdl: %w", err)
	}
	sch, err := schema.BuildFromSDL(sdlFile, sdl)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	rendered := schema.Render(sch)
	if outFile == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(outFile, []byte(rendered), 0644)
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(0)
	otelEndpoint := ""
	otelService := "gqlbridge"

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Request body size limit")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if maxBody > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(maxBody))
	}
	h := server.New(batch.New(batch.NewSchemaEngine()), sopts...)

	mux := http.NewServeMux()
	mux.Handle("/introspect", h)

	log.Printf("introspection server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
