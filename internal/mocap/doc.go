// Package mocap interprets decoded OSC messages as mocopi motion-capture
// payloads. It maps the device's address vocabulary to skeleton definitions
// and per-frame bone transforms, passing unrecognized addresses through
// untouched for forward compatibility.
package mocap
