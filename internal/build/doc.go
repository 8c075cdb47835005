// Package build runs the span pipeline over an in-memory source tree.
//
// A build walks a fixed list of stages: ignored files are removed, pre-run
// commands rewrite matching files, passthrough files are set aside, every
// file below contents/ is expanded and handed to the renderer together with
// its best matching template, and finally the passthrough files are merged
// back over the rendered tree. All execution paths (CLI build, watch) route
// through BuildService.
//
// Stage failures abort the build and are returned as *errors.SpanError
// naming the stage. Failures of individual files inside one stage are
// collected first so a single run reports every broken file.
package build
