package buildinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextGetters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ctx       *Context
		version   string
		buildDate string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty fields", &Context{}, UnknownValue, UnknownValue},
		{"populated", NewContext("1.2.0", "2026-10-01"), "1.2.0", "2026-10-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.buildDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestContextString(t *testing.T) {
	t.Parallel()

	s := NewContext("1.2.0", "2026-10-01").String()
	assert.Contains(t, s, "openingbook 1.2.0")
	assert.Contains(t, s, "built 2026-10-01")
	assert.Contains(t, s, runtime.Version())
}
