package command

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) (path, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "ctl.db")
	path = filepath.Join(dir, "config.yaml")
	content := "database:\n" +
		"  driver: sqlite\n" +
		"  sqlite_path: " + dbPath + "\n" +
		"jwt:\n" +
		"  secret: 0123456789abcdef0123456789abcdef\n" +
		"  access_token_expiration: 2h\n" +
		"logging:\n" +
		"  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, dbPath
}

func run(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(append([]string{"unistudctl"}, args...))
	return out.String(), err
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen", "--bytes", "40")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if len(key) != 40 {
		t.Fatalf("expected 40 bytes, got %d", len(key))
	}

	if _, err := run(t, "keygen", "--bytes", "8"); err == nil {
		t.Fatal("expected short key to be rejected")
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "token", "issue", "--email", "ada@uni.example.org")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	token := strings.TrimSpace(out)

	out, err = run(t, "--config", cfgPath, "token", "verify", "--token", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "subject: ada@uni.example.org") {
		t.Fatalf("unexpected verify output %q", out)
	}

	out, err = run(t, "--config", cfgPath, "token", "issue", "--email", "ada@uni.example.org", "--ttl", "-1m")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := run(t, "--config", cfgPath, "token", "verify", "--token", strings.TrimSpace(out)); err == nil {
		t.Fatal("expected expired token to fail verification")
	}

	if _, err := run(t, "--config", cfgPath, "token", "verify", "--token", token+"x"); err == nil {
		t.Fatal("expected tampered token to fail verification")
	}
}

func TestMigrateSQLite(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)

	for i := 0; i < 2; i++ {
		out, err := run(t, "--config", cfgPath, "migrate")
		if err != nil {
			t.Fatalf("migrate run %d: %v", i, err)
		}
		if !strings.Contains(out, "sqlite schema is up to date") {
			t.Fatalf("unexpected output %q", out)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}
