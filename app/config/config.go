// Package config provides a go-simpler.org/env configuration table and
// helpers for printing the effective configuration, matching the pattern
// the rest of this codebase's lineage uses for its own services.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go-simpler.org/env"
	lol "lol.mleku.dev"
	"lol.mleku.dev/chk"

	"gateway.nsyte.dev/pkg/version"
)

// C holds the gateway's configuration, loaded from environment variables
// with defaults. Field names mirror the option table in the specification's
// external-interfaces section.
type C struct {
	AppName string `env:"NSYTE_APP_NAME" default:"nsyte-gateway" usage:"name to display in logs and help text"`

	Listen     string `env:"NSYTE_LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port       int    `env:"NSYTE_PORT" default:"6798" usage:"TCP port to serve HTTP on"`
	HealthPort int    `env:"NSYTE_HEALTH_PORT" default:"0" usage:"optional health check HTTP port; 0 disables"`

	LogLevel    string `env:"NSYTE_LOG_LEVEL" default:"info" usage:"gateway log level: fatal error warn info debug trace"`
	LogToStdout bool   `env:"NSYTE_LOG_TO_STDOUT" default:"false" usage:"log to stdout instead of stderr"`
	Pprof       string `env:"NSYTE_PPROF" usage:"enable pprof in modes: cpu,memory,allocation"`
	PprofPath   string `env:"NSYTE_PPROF_PATH" usage:"directory to write pprof profiles to"`

	TargetPubkey     string `env:"NSYTE_TARGET_PUBKEY" usage:"hex pubkey that bare-localhost requests redirect to"`
	TargetIdentifier string `env:"NSYTE_TARGET_IDENTIFIER" usage:"named-site identifier that bare-localhost requests redirect to, if any"`

	ProfileRelays       []string `env:"NSYTE_PROFILE_RELAYS" usage:"relays consulted for profile/relay-list/server-list lookups"`
	FileRelays          []string `env:"NSYTE_FILE_RELAYS" usage:"relays consulted for manifest lookups"`
	DefaultFileRelays   []string `env:"NSYTE_DEFAULT_FILE_RELAYS" usage:"relays appended to FileRelays when AllowFallbackRelays is set"`
	Servers             []string `env:"NSYTE_SERVERS" usage:"blob servers used when a manifest endorses none"`
	AllowFallbackRelays bool     `env:"NSYTE_ALLOW_FALLBACK_RELAYS" default:"false" usage:"widen the relay pool with DefaultFileRelays when the primary set yields nothing"`
	AllowFallbackServers bool    `env:"NSYTE_ALLOW_FALLBACK_SERVERS" default:"false" usage:"widen the server list with Servers when a manifest endorses none"`

	CacheDir string `env:"NSYTE_CACHE_DIR" usage:"disk cache root; disabled if unset"`
}

// New loads configuration from the environment, applying defaults for any
// unset field, and prepares logging per LogLevel/LogToStdout.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		}
		PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if cfg.CacheDir == "" {
		// leave disabled; an explicit empty value means "no disk tier", not
		// "use the default" — unlike ORLY_DATA_DIR this option is genuinely
		// optional.
	} else if strings.Contains(cfg.CacheDir, "~") {
		cfg.CacheDir = filepath.Join(xdg.CacheHome, cfg.AppName)
	}
	if GetEnv() {
		PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	if HelpRequested() {
		PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if cfg.LogToStdout {
		lol.Writer = os.Stdout
	}
	lol.SetLogLevel(cfg.LogLevel)
	return
}

// HelpRequested reports whether the first command-line argument asks for
// usage text.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv reports whether the first command-line argument asks for the
// effective configuration to be printed.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 && strings.ToLower(os.Args[1]) == "env" {
		requested = true
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// KVSlice is a sortable slice of key/value pairs.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// EnvKV derives key/value pairs from cfg's env struct tags.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		v := reflect.ValueOf(cfg).Field(i).Interface()
		var val string
		switch vv := v.(type) {
		case string:
			val = vv
		case int, bool, time.Duration:
			val = fmt.Sprint(vv)
		case []string:
			if len(vv) > 0 {
				val = strings.Join(vv, ",")
			}
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv writes cfg's environment variables, one per line, sorted by key.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp writes usage text and the effective configuration to printer.
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer, "%s %s\n\n", cfg.AppName, version.V)
	_, _ = fmt.Fprintf(
		printer,
		"Usage: %s [env|help]\n\n- env: print environment variables configuring %s\n- help: print this help text\n\n",
		cfg.AppName, cfg.AppName,
	)
	_, _ = fmt.Fprintf(printer, "Environment variables that configure %s:\n\n", cfg.AppName)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	fmt.Fprintf(printer, "\ncurrent configuration:\n\n")
	PrintEnv(cfg, printer)
	fmt.Fprintln(printer)
}
