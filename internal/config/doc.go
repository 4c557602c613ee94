// Package config defines the settings shared by the room-control binaries and
// provides helpers to load, validate and save them in YAML format.
//
// It also parses the comfort-band file: two lines of "low high ideal", the
// first for temperature and the second for humidity.
package config
