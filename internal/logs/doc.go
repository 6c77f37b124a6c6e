// Package logs reads the persistent JSON log written under the log directory.
//
// Last returns the trailing lines of the file, ReadFrom resumes from a byte
// offset, and Follow polls for appended lines until its context ends. A
// Filter narrows the output to one archive request or a minimum level so the
// CLI can show the history of a single capture.
package logs
