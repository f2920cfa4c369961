// Package idgen produces the opaque identifiers carried by lifecycle
// events. It wraps the UUID generator behind a stub point and lives under
// `internal` so consumers of the event stream never depend on the id
// format.
package idgen
