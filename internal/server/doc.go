// Package server exposes the sign pipeline over HTTP. It serves the
// trigger endpoint, the generated animations, a small web page and
// health and metrics endpoints.
package server
