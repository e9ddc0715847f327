/*
Package resources resolves all kinds of resources for fontdiff: fonts and
word lists.

Word lists are packaged with the module, one file per script, named after
the script's ISO 15924 code (e.g. "Latn.txt"). Clients may add directories
of their own word lists in front of the packaged ones.

As font loading may be a time-consuming task (fonts may have to be
downloaded first), fonts are resolved in an async/await fashion. Functions
named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'fontdiff.resources'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.resources")
}
