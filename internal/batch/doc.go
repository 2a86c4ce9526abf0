// Package batch reads word lists for rendering many sign animations
// without a microphone.
package batch
