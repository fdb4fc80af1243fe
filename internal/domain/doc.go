// Package domain models the messages produced by the NOAA file-watcher
// service and the payloads of the two tracked product families.
//
// # Data Source
//
// The upstream file-watcher polls NOAA product feeds, parses each changed
// file with a product-specific parser, and pushes a framed JSON message over
// a local socket whenever a file changes:
//
//	{"cmd": "new", "data": {"parser": "...", "file": {...}, "json": {...}}}
//
// A "shutdown" command announces that the watcher itself is going away.
// Any other command value is unknown and must be ignored after logging.
//
// # ATCF Conventions
//
// Automated Tropical Cyclone Forecasting (ATCF) deck files carry one record
// per advisory, newest first. Fields this service cares about:
//
//	level       classification, e.g. "DB" (disturbance), "TD", "TS", "HU"
//	name        system name, or the sentinel "INVEST" for unnamed invests
//	basin       two-letter basin code, e.g. "AL", "EP"
//	genNo       genesis number assigned at first detection
//	maxSusWind  one-minute sustained wind in knots
//	windRad     wind radii: code "AAA" means a single (asymmetric) radius,
//	            "NEQ" means quadrant-resolved NE/SE/SW/NW radii
//	invest      present when the genesis area spawned a numbered invest
//	trans       present when the system transitioned to a named storm
//	diss        present when the system dissipated
//
// Intensity categories follow the Saffir-Simpson thresholds in knots:
// 34 (TS), 64 (CAT1), 83 (CAT2), 96 (CAT3), 113 (CAT4), 137 (CAT5).
//
// # TWO Conventions
//
// The Tropical Weather Outlook (TWO) groups disturbance areas by basin.
// Each area carries a two-day and seven-day formation chance in percent;
// a missing outlook means the chance is unknown. The issuance time comes
// from the basin block, falling back to the watched file's mtime.
//
// # Timestamps
//
// The watcher emits timestamps either as RFC 3339 strings or as epoch
// milliseconds, depending on which parser produced the file. [Timestamp]
// accepts both.
package domain
