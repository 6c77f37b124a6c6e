// Package staging owns the scratch directories that hold a capture between
// rendering and publication.
//
// Allocate hands out a unique directory per archive request and Release
// removes it. CleanStale and ListDirectories inspect the scratch root for
// directories abandoned by crashed processes.
package staging
