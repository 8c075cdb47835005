// Package workspace manages scratch directories for external commands.
//
// Every Manager owns one uniquely named directory (span-<uuid>) below its
// base directory. Callers create it, place temporary files in it and remove
// it with Cleanup once the invocation is over, whatever its outcome.
package workspace
