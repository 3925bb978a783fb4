package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/queryward/queryward/internal/config"
	"github.com/queryward/queryward/internal/eventbus"
	"github.com/queryward/queryward/internal/events"
	"github.com/queryward/queryward/internal/language"
	"github.com/queryward/queryward/internal/metrics"
	"github.com/queryward/queryward/internal/otel"
	"github.com/queryward/queryward/internal/schema"
	"github.com/queryward/queryward/internal/sdl"
	"github.com/queryward/queryward/internal/server"
	"github.com/queryward/queryward/internal/validation"
)

const rootUsage = `queryward — GraphQL document validation service & tools

USAGE:
  queryward <command> [flags]

COMMANDS:
  serve            Run the HTTP validation endpoint
  check            Validate query documents against a schema
  compile-sdl      Merge & validate GraphQL SDL into a single schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>             YAML configuration file
  -schema.root <dir>         Schema definition root (default: .)
  -schema.watch              Reload the schema when files change
  -server.addr <addr>        HTTP listen address (default: :8080)
  -server.pretty             Pretty-print JSON responses
  -server.timeout <duration> Per-request timeout, e.g. 10s (default: 10s)
  -otel.endpoint <addr>      OTLP collector endpoint
  -otel.service <name>       OpenTelemetry service name (default: queryward)
`

const checkUsage = `check FLAGS:
  -schema.root <dir>  Schema definition root (default: .)
  <file>...           Query documents to validate (required)
  (Exits non-zero when any document is invalid)
`

const compileSDLUsage = `compile-sdl FLAGS:
  -schema.root <dir>  Schema definition root (default: .)
  -out <file>         Write compiled SDL to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("queryward", flag.ContinueOnError)
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
	case "serve":
		return cmdServe(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "compile-sdl":
		return cmdCompileSDL(cmdArgs)
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
	case "serve":
		fmt.Print(serveUsage)
	case "check":
		fmt.Print(checkUsage)
	case "compile-sdl":
		fmt.Print(compileSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func buildSchema(rootDir string) (*schema.Schema, error) {
	proj, err := sdl.Load(rootDir)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	sch, err := schema.Build(proj)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

func cmdServe(args []string) error {
	configPath := ""
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")

	// Flags override whatever the config file set.
	schemaRoot := fs.String("schema.root", "", "Schema definition root")
	watch := fs.Bool("schema.watch", false, "Reload the schema when files change")
	addr := fs.String("server.addr", "", "HTTP listen address")
	pretty := fs.Bool("server.pretty", false, "Pretty-print JSON responses")
	timeout := fs.Duration("server.timeout", 0, "Per-request timeout")
	otelEndpoint := fs.String("otel.endpoint", "", "OTLP collector endpoint")
	otelService := fs.String("otel.service", "", "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if *schemaRoot != "" {
		cfg.SchemaDir = *schemaRoot
	}
	if *watch {
		cfg.Watch = true
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *pretty {
		cfg.Pretty = true
	}
	if *timeout > 0 {
		cfg.Timeout = config.Duration(*timeout)
	}
	if *otelEndpoint != "" {
		cfg.OTLPEndpoint = *otelEndpoint
	}
	if *otelService != "" {
		cfg.ServiceName = *otelService
	}

	sch, err := buildSchema(cfg.SchemaDir)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if cfg.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.Timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.Timeout.Std()))
	}
	if cfg.MaxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(cfg.MaxBodyBytes))
	}
	if len(cfg.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.CORSOrigins...))
	}
	h := server.New(sch, sopts...)

	mux := http.NewServeMux()
	mux.Handle("/validate", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics {
		m := metrics.New()
		m.Register()
		mux.Handle("/metrics", m.Handler())
	}

	if cfg.Watch {
		stop, err := watchSchema(cfg.SchemaDir, h)
		if err != nil {
			return fmt.Errorf("watch schema: %w", err)
		}
		defer stop()
	}

	log.Printf("validation server listening on %s", cfg.Listen)
	return http.ListenAndServe(cfg.Listen, mux)
}

// watchSchema rebuilds the schema whenever a definition file under rootDir
// changes and swaps it into the handler. A failed rebuild keeps the previous
// schema serving.
func watchSchema(rootDir string, h *server.Handler) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var timer *time.Timer
		reload := func() {
			sch, err := buildSchema(rootDir)
			eventbus.Publish(context.Background(), events.SchemaReload{Source: rootDir, Err: err})
			if err != nil {
				log.Printf("schema reload failed: %v", err)
				return
			}
			h.Reload(sch)
			log.Printf("schema reloaded from %s", rootDir)
		}
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSchemaFile(ev.Name) {
					continue
				}
				// Editors fire bursts of events per save; coalesce them.
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("schema watcher: %v", err)
			}
		}
	}()
	return func() { _ = watcher.Close() }, nil
}

func isSchemaFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".graphql" || ext == ".graphqls"
}

func cmdCheck(args []string) error {
	schemaRoot := "."
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaRoot, "schema.root", schemaRoot, "Schema definition root")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("no documents given")
	}

	sch, err := buildSchema(schemaRoot)
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		doc, err := language.ParseQuery(string(data))
		if err != nil {
			failed++
			fmt.Printf("%s: %v\n", file, err)
			continue
		}
		errs := validation.Validate(sch, doc)
		if len(errs) == 0 {
			fmt.Printf("%s: ok\n", file)
			continue
		}
		failed++
		fmt.Printf("%s:\n", file)
		for _, e := range errs {
			fmt.Printf("  %s: %s\n", e.Rule, e.Error())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents invalid", failed, len(files))
	}
	return nil
}

func cmdCompileSDL(args []string) error {
	schemaRoot := "."
	outFile := ""
	fs := flag.NewFlagSet("compile-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaRoot, "schema.root", schemaRoot, "Schema definition root")
	fs.StringVar(&outFile, "out", outFile, "Write compiled SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, compileSDLUsage)
		return err
	}

	sch, err := buildSchema(schemaRoot)
	if err != nil {
		return err
	}
	out := schema.Render(sch)
	if outFile == "" {
		fmt.Print(out)
		return nil
	}
	return os.WriteFile(outFile, []byte(out), 0644)
}
