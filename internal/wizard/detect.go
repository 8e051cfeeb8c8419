package wizard

import (
	"os"
	"os/exec"
)

// DetectionResult holds what was auto-detected on the system.
type DetectionResult struct {
	ConsulBinary   bool   // consul binary found on PATH
	EnvURL         string // CONSUL_URL or CONSUL_HTTP_ADDR if set
	ExistingConfig string // path of an existing ini file, empty otherwise
}

// Detector abstracts path and environment lookups for testing.
type Detector interface {
	LookPath(name string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Getenv(name string) string
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) LookPath(name string) (string, error)  { return exec.LookPath(name) }
func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) Getenv(name string) string             { return os.Getenv(name) }

// Detect scans the environment for hints about a reachable Consul
// agent and an existing configuration.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{}

	if _, err := d.LookPath("consul"); err == nil {
		result.ConsulBinary = true
	}

	for _, name := range []string{"CONSUL_URL", "CONSUL_HTTP_ADDR"} {
		if v := d.Getenv(name); v != "" {
			result.EnvURL = v
			break
		}
	}

	for _, p := range []string{"consul_awx.ini", "consul.ini"} {
		if _, err := d.Stat(p); err == nil {
			result.ExistingConfig = p
			break
		}
	}

	return result
}
