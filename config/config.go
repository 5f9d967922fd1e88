// Package config holds the CLI-facing option types for the palm detection
// demo: strict boolean literals, backend/target enumerations, and the
// capability query that reports which combinations this build supports.
package config

import (
	"fmt"
	"strings"
)

// ParseBool parses the fixed boolean literal set accepted on the command
// line: {on, yes, true, y, t} and {off, no, false, n, f}, case-insensitively.
// Anything else is an explicit error, never a silent default.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "true", "y", "t":
		return true, nil
	case "off", "no", "false", "n", "f":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean literal %q (want on/off, yes/no, true/false, y/n or t/f)", s)
}

// Backend selects which inference library executes the network.
type Backend string

// Supported computation backends.
const (
	// BackendOpenCV runs the model through OpenCV's own DNN implementation.
	BackendOpenCV Backend = "opencv"
	// BackendCUDA runs the OpenCV DNN module on CUDA.
	BackendCUDA Backend = "cuda"
	// BackendORT runs the model through ONNX Runtime.
	BackendORT Backend = "ort"
)

// Target selects the compute device the backend executes on.
type Target string

// Supported target devices.
const (
	TargetCPU      Target = "cpu"
	TargetCUDA     Target = "cuda"
	TargetCUDAFP16 Target = "cuda-fp16"
)

// ParseBackend validates a backend name from the command line.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case BackendOpenCV:
		return BackendOpenCV, nil
	case BackendCUDA:
		return BackendCUDA, nil
	case BackendORT:
		return BackendORT, nil
	}
	return "", fmt.Errorf("unknown backend %q (want opencv, cuda or ort)", s)
}

// ParseTarget validates a target name from the command line.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(s)) {
	case TargetCPU:
		return TargetCPU, nil
	case TargetCUDA:
		return TargetCUDA, nil
	case TargetCUDAFP16:
		return TargetCUDAFP16, nil
	}
	return "", fmt.Errorf("unknown target %q (want cpu, cuda or cuda-fp16)", s)
}
