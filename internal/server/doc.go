// Package server implements the UDP receiver for mocopi datagrams and the
// HTTP API endpoints. It handles concurrent datagram decoding, routing of
// decoded packets to capture sessions, and monitoring endpoints.
package server
