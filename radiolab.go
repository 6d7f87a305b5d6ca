package radiolab

import _ "embed"

// Version is the release of this module, read from the VERSION file.
// Callers should strings.TrimSpace it.
//
//go:embed VERSION
var Version string
