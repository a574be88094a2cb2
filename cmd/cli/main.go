// Command stockroom is a CLI client for the Stockroom service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/status"

	"github.com/and161185/stockroom/internal/client"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "stockroom")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stockroom")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- utils ----

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `stockroom CLI
Usage:
  stockroom -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  register   -u <username> -p <password> [-e <email>]
  login      -u <username> -p <password>            (saves token)
  whoami

  users      list
  users      get -id <uuid> | -u <username>
  users      create -u <username> -p <password> [-e <email>]
  users      update -id <uuid> [-u <username>] [-e <email>] [-p <password>]
  users      rm -id <uuid>
  users      exists -u <username> | -e <email>

  products   list [-name <part>] [-category <c>] [-min <price>] [-max <price>]
  products   get -id <uuid>
  products   create -name <n> -price <p> [-desc <d>] [-category <c>] [-stock <n>]
  products   update -id <uuid> [-name <n>] [-price <p>] [-desc <d>] [-category <c>] [-stock <n>]
  products   rm -id <uuid>
  products   search -q <part>
  products   category -c <category>
  products   price -min <p> -max <p>
  categories
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and configures TLS/auth for RPC calls.
func main() {
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (local dev server)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("stockroom %s (%s)\n", version, buildDate)
		return
	}

	opts := client.Options{CACert: *caPath, Insecure: *insecure, Plaintext: *plaintext}
	if cmd != "register" && cmd != "login" {
		tok, err := loadToken()
		if err != nil {
			fail(err)
		}
		opts.Token = tok
	}
	c, err := client.Dial(*addr, opts)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := dispatch(ctx, c, cmd, args, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		}
		fail(err)
	}
}

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
