/*
Package fontregistry manages a registry for loaded fonts.

Fonts are registered under a key denoting their location, e.g. a file path
or URL. Loading a font which is already present in the registry returns the
registered font, therefore font binaries are parsed once per process, even
if a font is requested concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontdiff.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.fonts")
}
