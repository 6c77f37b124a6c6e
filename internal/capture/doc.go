// Package capture renders a web page into a scratch directory and validates
// the result.
//
// Controller allocates (or accepts) a scratch directory, runs a Renderer
// under a deadline, reads the page title from the renderer's metadata file,
// and checks that one page and one screenshot were produced. Any failure
// removes the directory before returning, so callers only ever own the
// directory of a successful capture.
//
// CommandRenderer is the production Renderer: it runs an external program
// through an Executor seam, passing the URL, output directory, user agent,
// browser launch arguments, and an optional remote browser endpoint built by
// BrowserEndpoint.
package capture
