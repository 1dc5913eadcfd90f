package buildinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextGetters(t *testing.T) {
	tests := []struct {
		name        string
		ctx         *Context
		wantVersion string
		wantDate    string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty context", &Context{}, UnknownValue, UnknownValue},
		{"populated", &Context{Version: "v1.2.0", BuildDate: "2026-10-01"}, "v1.2.0", "2026-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVersion, tt.ctx.GetVersion())
			assert.Equal(t, tt.wantDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestContextImplementsBuildInfo(t *testing.T) {
	var bi BuildInfo = &Context{Version: "dev"}
	assert.Equal(t, "dev", bi.GetVersion())
}

func TestContextString(t *testing.T) {
	s := (&Context{Version: "v0.3.1"}).String()
	assert.Contains(t, s, "hogwarts-heroes v0.3.1")
	assert.Contains(t, s, "built unknown")
	assert.Contains(t, s, runtime.Version())
}
