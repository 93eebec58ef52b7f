// Package configuration provides flat string-keyed settings sources: static
// maps, environment variables and sectioned YAML files, chained so the first
// source that knows a key answers.
package configuration
