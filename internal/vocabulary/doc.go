// Package vocabulary holds the fixed set of words signspeak can render.
// Each word is a normalized lowercase token mapped to a unique numeric
// label. A Registry is built once at startup and never changes afterwards.
package vocabulary
