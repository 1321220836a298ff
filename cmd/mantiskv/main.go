// Command mantiskv is a small operator CLI for opening a pool with one
// of the registered engines and running point operations and a record
// count against it, adapted from cmd/mantisDB's flag-parsing and
// version-reporting conventions, trimmed down to this library's scope:
// no HTTP API, no admin server, no benchmark harness.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"mantiskv/db"
	"mantiskv/engine"
	_ "mantiskv/engines"
	"mantiskv/internal/telemetry"
	"mantiskv/option"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// processConfig is the on-disk CLI configuration, yaml to match
// config.Config's own loading convention.
type processConfig struct {
	Engine      string             `yaml:"engine"`
	Path        string             `yaml:"path"`
	Compression string             `yaml:"compression"`
	Logging     telemetry.Config   `yaml:"logging"`
}

func defaultProcessConfig() processConfig {
	return processConfig{Engine: "chash", Compression: "none", Logging: telemetry.DefaultConfig()}
}

func loadProcessConfig(path string) (processConfig, error) {
	cfg := defaultProcessConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("mantiskv: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("mantiskv: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML process config")
		engineName  = flag.String("engine", "", "engine name (overrides config file)")
		poolPath    = flag.String("path", "", "pool file path (overrides config file)")
		compression = flag.String("compression", "", "value compression codec: none|snappy|lz4|zstd")
		listEngines = flag.Bool("list-engines", false, "print registered engine names and exit")
		showVersion = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mantiskv %s (build %s, commit %s, %s)\n", Version, BuildTime, GitCommit, runtime.Version())
		return
	}
	if *listEngines {
		for _, name := range engine.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := loadProcessConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *poolPath != "" {
		cfg.Path = *poolPath
	}
	if *compression != "" {
		cfg.Compression = *compression
	}
	if cfg.Path == "" {
		fmt.Fprintln(os.Stderr, "mantiskv: a pool path is required (--path or config file)")
		os.Exit(1)
	}

	log, err := telemetry.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	opts := option.New()
	opts.PutString("path", cfg.Path)
	if cfg.Compression != "" {
		opts.PutString("compression", cfg.Compression)
	}

	database, err := db.Open(cfg.Engine, opts, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mantiskv: open:", err)
		os.Exit(1)
	}
	defer database.Close()

	runREPL(database)
}

// runREPL is a line-oriented shell: put/get/remove/count/quit, enough to
// drive the facade interactively without a network surface.
func runREPL(database *db.Database) {
	fmt.Println("mantiskv ready. commands: put <k> <v> | get <k> | remove <k> | count | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "put":
			if len(fields) != 3 {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			if err := database.Put([]byte(fields[1]), []byte(fields[2])); err != nil {
				fmt.Println("error:", err)
			}
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			v, err := database.GetCopy([]byte(fields[1]))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(string(v))
		case "remove":
			if len(fields) != 2 {
				fmt.Println("usage: remove <key>")
				continue
			}
			if err := database.Remove([]byte(fields[1])); err != nil {
				fmt.Println("error:", err)
			}
		case "count":
			n, err := database.CountAll()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(n)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
