// Package config provides configuration structures and utilities for ccrscan.
// It defines the options of the extract run, the optional .ccrscan YAML file
// with per-system filters, and the XDG directories used for the database.
package config
