package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// goos is swappable in tests.
var goos = func() string { return runtime.GOOS }

// OpenBrowser launches the system browser at url, taking the user to a
// streaming service's consent page during the OAuth flow.
//
// Callers treat failure as non-fatal and print the URL for manual opening
// instead.
func OpenBrowser(url string) error {
	var name string
	var args []string

	switch os := goos(); os {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return fmt.Errorf("cannot open a browser on %s", os)
	}

	args = append(args, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
