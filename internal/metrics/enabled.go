package metrics

import "os"

// Enabled reports whether GNM_PROMETHEUS=1 is set, gating the opt-in
// metrics exporter.
func Enabled() bool {
	return os.Getenv("GNM_PROMETHEUS") == "1"
}
