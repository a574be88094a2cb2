package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "stockroom")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(tokenPath(), base) || !strings.HasSuffix(tokenPath(), "token.json") {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}
}

func Test_token_SaveLoad(t *testing.T) {
	_ = withTmpConfig(t)

	if _, err := loadToken(); err == nil {
		t.Fatalf("expected error when token file missing")
	}
	if err := saveToken("tok", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tok, err := loadToken()
	if err != nil || tok != "tok" {
		t.Fatalf("loadToken: tok=%q err=%v", tok, err)
	}
	st, err := os.Stat(tokenPath())
	if err != nil || st.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode: %v %v", st, err)
	}

	if err := saveToken("tok2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}
}

func Test_printJSON_WritesPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printJSON(&buf, map[string]any{"a": 1})

	var m map[string]any
	if json.Unmarshal(buf.Bytes(), &m) != nil || m["a"] != float64(1) {
		t.Fatalf("printJSON produced invalid json: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("printJSON should indent")
	}
}

func Test_parseRegisterAndLogin(t *testing.T) {
	t.Parallel()

	r, err := parseRegister("register", []string{"-u", "alice", "-p", "pw", "-e", "a@x.io"})
	if err != nil || r.Username != "alice" || r.Email != "a@x.io" {
		t.Fatalf("parseRegister: %+v %v", r, err)
	}
	if _, err := parseRegister("register", []string{"-u", "alice"}); err == nil {
		t.Fatalf("want error without password")
	}
	if _, err := parseLogin([]string{"-p", "pw"}); err == nil {
		t.Fatalf("want error without username")
	}
}

func Test_parseUserUpdate_OnlyGivenFields(t *testing.T) {
	t.Parallel()

	r, err := parseUserUpdate([]string{"-id", "x", "-e", ""})
	if err != nil {
		t.Fatalf("parseUserUpdate: %v", err)
	}
	if r.Username != nil {
		t.Fatalf("username must stay nil when not given")
	}
	if r.Email == nil || *r.Email != "" {
		t.Fatalf("explicit empty email must be sent to clear it")
	}
	if _, err := parseUserUpdate(nil); err == nil {
		t.Fatalf("want error without -id")
	}
}

func Test_parseProductFlags(t *testing.T) {
	t.Parallel()

	c, err := parseProductCreate([]string{"-name", "Widget", "-price", "9.99", "-category", "Tools", "-stock", "3"})
	if err != nil {
		t.Fatalf("parseProductCreate: %v", err)
	}
	if c.Description != nil || c.Category == nil || *c.Category != "Tools" || c.StockQuantity != 3 {
		t.Fatalf("bad create: %+v", c)
	}
	if _, err := parseProductCreate([]string{"-name", "x"}); err == nil {
		t.Fatalf("want error without price")
	}

	u, err := parseProductUpdate([]string{"-id", "x", "-price", "8.99", "-stock", "0"})
	if err != nil {
		t.Fatalf("parseProductUpdate: %v", err)
	}
	if u.Name != nil || u.Price == nil || *u.Price != "8.99" || u.StockQuantity == nil || *u.StockQuantity != 0 {
		t.Fatalf("bad update: %+v", u)
	}

	l, err := parseProductList([]string{"-category", "fruit", "-max", "5"})
	if err != nil || l.Category != "fruit" || l.MaxPrice != "5" || l.MinPrice != "" {
		t.Fatalf("parseProductList: %+v %v", l, err)
	}
}

func Test_dispatch_UnknownCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := dispatch(context.Background(), nil, "frobnicate", nil, &buf); !errors.Is(err, errUsage) {
		t.Fatalf("want errUsage, got %v", err)
	}
	if err := dispatch(context.Background(), nil, "users", nil, &buf); !errors.Is(err, errUsage) {
		t.Fatalf("want errUsage for bare users, got %v", err)
	}
}
