// Package buildinfo holds build-time metadata kept apart from user configuration
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// UnknownValue is reported for metadata the build did not provide
const UnknownValue = "unknown"

// develVersion is what the module reports when built from a work tree
const develVersion = "(devel)"

// Context carries the version and build date injected with -ldflags
type Context struct {
	Version   string
	BuildDate string
}

// NewContext returns build metadata. An empty version falls back to the
// module version recorded by the go tool.
func NewContext(version, buildDate string) *Context {
	if version == "" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != develVersion {
			version = bi.Main.Version
		}
	}
	return &Context{Version: version, BuildDate: buildDate}
}

// GetVersion returns the version or UnknownValue
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns the build date or UnknownValue
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// String formats the metadata for the version command
func (c *Context) String() string {
	return fmt.Sprintf("openingbook %s (built %s, %s %s/%s)",
		c.GetVersion(), c.GetBuildDate(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
