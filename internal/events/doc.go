// Package events publishes pipeline outcomes to NATS so other services can
// react to recognized signs.
package events
