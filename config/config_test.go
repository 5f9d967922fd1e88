package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	truthy := []string{"on", "yes", "true", "y", "t", "ON", "Yes", "TRUE", "Y", "T"}
	for _, s := range truthy {
		v, err := ParseBool(s)
		require.NoError(t, err, "literal %q", s)
		assert.True(t, v, "literal %q", s)
	}

	falsy := []string{"off", "no", "false", "n", "f", "OFF", "No", "FALSE", "N", "F"}
	for _, s := range falsy {
		v, err := ParseBool(s)
		require.NoError(t, err, "literal %q", s)
		assert.False(t, v, "literal %q", s)
	}

	// Anything outside the fixed literal set fails explicitly instead of
	// silently defaulting.
	for _, s := range []string{"", "1", "0", "enabled", "tru", "yess", " true"} {
		_, err := ParseBool(s)
		assert.Error(t, err, "literal %q", s)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{in: "opencv", want: BackendOpenCV},
		{in: "OpenCV", want: BackendOpenCV},
		{in: "cuda", want: BackendCUDA},
		{in: "ort", want: BackendORT},
		{in: "", wantErr: true},
		{in: "timvx", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "backend %q", tt.in)
			continue
		}
		require.NoError(t, err, "backend %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "cpu", want: TargetCPU},
		{in: "CUDA", want: TargetCUDA},
		{in: "cuda-fp16", want: TargetCUDAFP16},
		{in: "npu", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "target %q", tt.in)
			continue
		}
		require.NoError(t, err, "target %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSupported(t *testing.T) {
	caps := []Capability{
		{Backend: BackendOpenCV, Targets: []Target{TargetCPU}},
		{Backend: BackendCUDA, Targets: []Target{TargetCUDA, TargetCUDAFP16}},
	}

	assert.True(t, Supported(caps, BackendOpenCV, TargetCPU))
	assert.True(t, Supported(caps, BackendCUDA, TargetCUDAFP16))
	assert.False(t, Supported(caps, BackendOpenCV, TargetCUDA))
	assert.False(t, Supported(caps, BackendORT, TargetCPU))
}

func TestCapabilitiesAlwaysIncludeOpenCVCPU(t *testing.T) {
	// The OpenCV DNN backend on CPU is the baseline every build has.
	caps := Capabilities()
	assert.True(t, Supported(caps, BackendOpenCV, TargetCPU))
}

func TestDescribe(t *testing.T) {
	caps := []Capability{
		{Backend: BackendOpenCV, Targets: []Target{TargetCPU}},
		{Backend: BackendCUDA, Targets: []Target{TargetCUDA, TargetCUDAFP16}},
	}
	assert.Equal(t, "opencv: cpu; cuda: cuda,cuda-fp16", Describe(caps))
}
