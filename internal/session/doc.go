// Package session tracks decoded mocopi packets per device source. The
// decoder itself is stateless; correlating a stream of frames with the last
// seen skeleton definition is this package's job, keyed by the datagram's
// remote address.
package session
