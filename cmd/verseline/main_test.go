package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
output_dir = %q
log_dir = %q
backgrounds_dir = %q
music_dir = %q
api_bind = ""

[tts]
enabled = false
`,
		filepath.Join(base, "staging"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "backgrounds"),
		filepath.Join(base, "music"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestThemesCommandListsRegistry(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, "--config", cfgPath, "themes")
	if err != nil {
		t.Fatalf("themes failed: %v", err)
	}
	for _, key := range []string{"nature", "ocean", "sunset", "minimal", "forest"} {
		if !strings.Contains(out, key) {
			t.Fatalf("themes output missing %q:\n%s", key, out)
		}
	}
}

func TestGenerateThenQueueList(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "generate",
		"-t", "ocean",
		"-l", "Salt wind rises",
		"-l", "over the long gray water",
		"-l", "gulls wheel and cry",
	)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queued video") {
		t.Fatalf("unexpected generate output:\n%s", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list failed: %v", err)
	}
	if !strings.Contains(out, "ocean") || !strings.Contains(out, "pending") {
		t.Fatalf("queue listing missing item:\n%s", out)
	}
}

func TestGenerateRejectsInvalidTheme(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCLI(t, "--config", cfgPath, "generate", "-t", "vaporwave")
	if err == nil {
		t.Fatal("expected error for unknown theme")
	}
	if !strings.Contains(err.Error(), "unknown theme") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigValidateUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := runCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLogsReadsFileWhenDaemonOffline(t *testing.T) {
	cfgPath := writeTestConfig(t)
	logDir := filepath.Join(filepath.Dir(cfgPath), "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	logPath := filepath.Join(logDir, "verseline.log")
	if err := os.WriteFile(logPath, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if strings.Contains(out, "alpha") || !strings.Contains(out, "beta") || !strings.Contains(out, "gamma") {
		t.Fatalf("unexpected logs output:\n%s", out)
	}
}

func TestStatusReportsQueueCounts(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfgPath, "generate", "-t", "nature",
		"-l", "one", "-l", "two", "-l", "three"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "pending") {
		t.Fatalf("status output missing pending count:\n%s", out)
	}
	if !strings.Contains(out, "not reachable") {
		t.Fatalf("status should report daemon unreachable:\n%s", out)
	}
}
