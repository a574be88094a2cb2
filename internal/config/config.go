// Package config loads server settings from defaults, environment and flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/token"
)

// Config holds server settings.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8443"`
	DSN             string        `env:"DSN"`     // empty selects the in-memory store
	JWTKey          string        `env:"JWT_KEY"` // empty generates a per-process key
	AccessTTL       time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	TLSCert         string        `env:"TLS_CERT"`
	TLSKey          string        `env:"TLS_KEY"`
	HashTime        uint          `env:"HASH_TIME" envDefault:"3"`
	HashMemoryKiB   uint          `env:"HASH_MEMORY_KIB" envDefault:"65536"`
	HashThreads     uint          `env:"HASH_THREADS" envDefault:"1"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Dev             bool          `env:"DEV"`
}

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STOCKROOM_"

// Load builds a Config. environ overrides the process environment when non-nil;
// args are command-line arguments without the program name. Usage goes to stderr
// and -h returns flag.ErrHelp.
func Load(args []string, environ map[string]string) (Config, error) {
	return load(args, environ, os.Stderr)
}

func load(args []string, environ map[string]string, out io.Writer) (Config, error) {
	var c Config
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("stockroom-server", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "PostgreSQL DSN (empty = in-memory store)")
	fs.StringVar(&c.JWTKey, "jwt-key", c.JWTKey, "HS256 signing key (empty = random per process)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "access token TTL")
	fs.StringVar(&c.TLSCert, "tls-cert", c.TLSCert, "TLS certificate (PEM)")
	fs.StringVar(&c.TLSKey, "tls-key", c.TLSKey, "TLS private key (PEM)")
	fs.UintVar(&c.HashTime, "hash-time", c.HashTime, "argon2id iterations")
	fs.UintVar(&c.HashMemoryKiB, "hash-memory", c.HashMemoryKiB, "argon2id memory in KiB")
	fs.UintVar(&c.HashThreads, "hash-threads", c.HashThreads, "argon2id parallelism")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown limit")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "development mode: reflection and console logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: empty listen address")
	}
	if c.AccessTTL <= 0 {
		return errors.New("config: access TTL must be positive")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("config: tls-cert and tls-key must be set together")
	}
	if c.JWTKey != "" && len(c.JWTKey) < token.KeySize {
		return fmt.Errorf("config: jwt key must be at least %d bytes", token.KeySize)
	}
	if c.HashTime == 0 || c.HashMemoryKiB == 0 || c.HashThreads == 0 {
		return errors.New("config: hash parameters must be positive")
	}
	if c.HashThreads > math.MaxUint8 || c.HashTime > math.MaxUint32 || c.HashMemoryKiB > math.MaxUint32 {
		return errors.New("config: hash parameters out of range")
	}
	return nil
}

// TLSEnabled reports whether a certificate pair is configured.
func (c Config) TLSEnabled() bool { return c.TLSCert != "" }

// HashParams converts the hash settings for crypto.NewHasher.
func (c Config) HashParams() crypto.Params {
	p := crypto.DefaultParams()
	p.Time = uint32(c.HashTime)
	p.Memory = uint32(c.HashMemoryKiB)
	p.Threads = uint8(c.HashThreads)
	return p
}
