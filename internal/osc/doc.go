// Package osc implements decoding of the OSC (Open Sound Control) envelope
// carried by mocopi UDP datagrams: 4-byte-aligned primitive atoms, messages
// made of an address pattern plus a type-tagged argument list, and
// recursively nested, size-prefixed bundles.
package osc
