// Package artifact turns captured files into publishable artifacts.
//
// Enumerate classifies the renderer's output directory into exactly one page
// and one screenshot. Preparer reads each file, computes a 256-bit content
// digest (sha256 by default, blake3 optionally), infers the media type from
// the file name, and builds the ordered tag set that travels with the upload.
package artifact
