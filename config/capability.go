package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Capability pairs a backend with the targets it can drive.
type Capability struct {
	Backend Backend
	Targets []Target
}

// Capabilities returns the (backend, target) combinations this build
// supports, queried once at startup. Optional backends that need external
// pieces (the ONNX Runtime shared library) are only listed when those pieces
// are present, so a request for a missing backend fails up front instead of
// deep inside the inference call.
func Capabilities() []Capability {
	caps := []Capability{
		{Backend: BackendOpenCV, Targets: []Target{TargetCPU}},
		{Backend: BackendCUDA, Targets: []Target{TargetCUDA, TargetCUDAFP16}},
	}

	if _, err := os.Stat(ORTLibraryPath()); err == nil {
		caps = append(caps, Capability{Backend: BackendORT, Targets: []Target{TargetCPU}})
	}

	return caps
}

// Supported reports whether the backend/target pair is usable on this build.
func Supported(caps []Capability, b Backend, t Target) bool {
	for _, c := range caps {
		if c.Backend != b {
			continue
		}
		for _, ct := range c.Targets {
			if ct == t {
				return true
			}
		}
	}
	return false
}

// Describe formats the capability set for CLI help and error messages.
func Describe(caps []Capability) string {
	parts := make([]string, 0, len(caps))
	for _, c := range caps {
		targets := make([]string, 0, len(c.Targets))
		for _, t := range c.Targets {
			targets = append(targets, string(t))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", c.Backend, strings.Join(targets, ",")))
	}
	return strings.Join(parts, "; ")
}

// ORTLibraryPath returns the expected location of the ONNX Runtime shared
// library for the current platform. The file may or may not exist; callers
// stat it before enabling the ort backend.
func ORTLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.dylib"
		}
		return "third_party/onnxruntime_amd64.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.so"
		}
		return "third_party/onnxruntime.so"
	}
}
