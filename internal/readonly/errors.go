package readonly

import (
	"fmt"
	"strings"
)

// UnsupportedError reports the loaded tools that prevent read-only mode.
// The tool names are included so the failure is actionable.
type UnsupportedError struct {
	Tools []string
}

// Error implements error.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("read-only mode is not supported by tools: %s",
		strings.Join(e.Tools, ", "))
}
