package shared

import "testing"

func TestOpenBrowser(t *testing.T) {
	t.Run("Unsupported Platform", func(t *testing.T) {
		orig := goos
		goos = func() string { return "plan9" }
		defer func() { goos = orig }()

		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error on unsupported platform")
		}
	})
}
