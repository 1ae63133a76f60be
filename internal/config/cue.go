package config

import "cuelang.org/go/cue"

// cuePath parses a CUE selector path, isolated here so config.go stays
// free of cue plumbing.
func cuePath(expr string) cue.Path {
	return cue.ParsePath(expr)
}
