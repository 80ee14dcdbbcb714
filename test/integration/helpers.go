//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint     string
	Token        string
	TokenURL     string
	ClientID     string
	ClientSecret string
	BinaryPath   string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:     os.Getenv("PARTNER_ENDPOINT"),
		Token:        os.Getenv("PARTNER_TOKEN"),
		TokenURL:     os.Getenv("PARTNER_OAUTH_TOKEN_URL"),
		ClientID:     os.Getenv("PARTNER_OAUTH_CLIENT_ID"),
		ClientSecret: os.Getenv("PARTNER_OAUTH_CLIENT_SECRET"),
		BinaryPath:   getBinaryPath(),
		Verbose:      os.Getenv("PARTNER_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the partner binary
func getBinaryPath() string {
	if path := os.Getenv("PARTNER_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../partner", "./partner", "../partner"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "partner"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("PARTNER_ENDPOINT not set, skipping integration test")
	}

	if config.Token == "" && config.ClientID == "" {
		t.Skip("neither PARTNER_TOKEN nor PARTNER_OAUTH_CLIENT_ID set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("partner binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the partner binary with an isolated token file.
type CommandRunner struct {
	config    *TestConfig
	t         *testing.T
	tokenFile string
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:    config,
		t:         t,
		tokenFile: filepath.Join(t.TempDir(), "token.yaml"),
	}
}

// Run executes a partner command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a partner command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...) //nolint:gosec // test binary path
	cmd.Env = append(os.Environ(), "PARTNER_TOKEN_FILE="+runner.tokenFile)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded); err != nil {
		t.Errorf("Output is not JSON (%v): %s", err, output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil || decoded == nil {
		t.Errorf("Output is not YAML (%v): %s", err, output)
	}
}
