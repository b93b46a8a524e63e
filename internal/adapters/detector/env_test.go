package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  OutputMode
	}{
		{name: "terminal", isTTY: true, want: ModePretty},
		{name: "pipe", isTTY: false, want: ModeJSON},
		{name: "terminal in CI", isTTY: true, ci: "true", want: ModeJSON},
		{name: "CI set to 1", isTTY: true, ci: "1", want: ModeJSON},
		{name: "CI disabled", isTTY: true, ci: "false", want: ModePretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detect(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, ModeJSON, DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag     string
		detected OutputMode
		want     OutputMode
	}{
		{flag: "", detected: ModePretty, want: ModePretty},
		{flag: "auto", detected: ModeJSON, want: ModeJSON},
		{flag: "pretty", detected: ModeJSON, want: ModePretty},
		{flag: "text", detected: ModeJSON, want: ModePretty},
		{flag: "json", detected: ModePretty, want: ModeJSON},
		{flag: "bogus", detected: ModePretty, want: ModePretty},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMode(tt.detected, tt.flag))
		})
	}
}
