package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// buildMM compiles the mm binary into dir.
func buildMM(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "mm")
	cmd := exec.Command("go", "build", "-o", bin, "../mm")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to compile mm binary: %v\n%s", err, out)
	}
	return bin
}

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	// mm-hello prints the environment it receives.
	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvStateDir, EnvStateDir, EnvUseRealData, EnvUseRealData, EnvVerbose, EnvVerbose)

	helloCmdPath := filepath.Join(tempDir, "mm-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write mm-hello source: %v", err)
	}
	cmd := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to compile mm-hello: %v\n%s", err, out)
	}

	mmBinaryPath := buildMM(t, tempDir)

	expectedStateDir := filepath.Join(tempDir, "state")
	args := []string{
		"-state-dir", expectedStateDir,
		"-real",
		"-v",
		"hello", // The extension subcommand
		"world",
	}

	mmCmd := exec.Command(mmBinaryPath, args...)
	mmCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH"), "HOME=" + tempDir}

	var stdout, stderr bytes.Buffer
	mmCmd.Stdout = &stdout
	mmCmd.Stderr = &stderr

	if err := mmCmd.Run(); err != nil {
		t.Fatalf("mm command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, expectedLine := range []string{
		EnvStateDir + "=" + expectedStateDir,
		EnvUseRealData + "=" + strconv.FormatBool(true),
		EnvVerbose + "=" + strconv.FormatBool(true),
		"args=[world]",
	} {
		if !strings.Contains(output, expectedLine) {
			t.Errorf("Expected output to contain %q, but got:\n%s", expectedLine, output)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	tempDir := t.TempDir()
	mmCmd := exec.Command(buildMM(t, tempDir), "nope")
	mmCmd.Env = []string{"PATH=" + tempDir, "HOME=" + tempDir}
	if err := mmCmd.Run(); err == nil {
		t.Errorf("mm nope succeeded, want an usage error")
	}
}
