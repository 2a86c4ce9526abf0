// Package animation assembles still sign frames into a looping GIF. Every
// frame is scaled to a fixed square size and quantized to a shared palette
// so the output has uniform frame dimensions. Files are written under a
// fresh random name and only become visible once fully written.
package animation
