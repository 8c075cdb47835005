// Package snippets expands snippet placeholders inside file contents.
//
// Two placeholder forms exist. An expansion inserts a snippet file:
//
//	$%%{[lookup-path:]name(key: value, ...)[@metadata-dir]}
//
// The snippet is found with a fuzzy lookup in the snippets tree, starting
// at lookup-path or at the directory of the referencing file. When a
// metadata directory is given, the snippet is instantiated once per file
// directly inside it, with that file's front matter merged over the inline
// arguments, and the instances are joined by a blank line.
//
// Inside snippet content a reference inserts a parameter value:
//
//	$%{dotted.key.chain}
//
// Segments that are valid integers index into sequences; all others name
// mapping fields.
package snippets
