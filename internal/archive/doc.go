// Package archive moves generated animations out of the served media
// directory into timestamped archive folders.
package archive
