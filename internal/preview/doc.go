// Package preview rebuilds the site whenever the input directory changes.
package preview
