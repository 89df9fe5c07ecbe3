package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment of the extensions, set from the global flags.
const (
	EnvConfigFile  = "MM_CONFIG_FILE"
	EnvStateDir    = "MM_STATE_DIR"
	EnvUseRealData = "MM_USE_REAL_DATA"
	EnvVerbose     = "MM_VERBOSE"
)

// extensionEnv returns the environment of an extension: the current one plus
// the global flags that were set.
func extensionEnv() []string {
	env := os.Environ()
	env = append(env, EnvConfigFile+"="+*configFile)
	if *stateDir != "" {
		env = append(env, EnvStateDir+"="+*stateDir)
	}
	if isFlagSet("real") {
		env = append(env, EnvUseRealData+"="+strconv.FormatBool(*realData))
	}
	return append(env, EnvVerbose+"="+strconv.FormatBool(*Verbose))
}

// RunExtension attempts to find and execute an external mm-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "mm-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
