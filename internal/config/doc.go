// Package config loads run configurations.
//
// A configuration is a .cue or .yaml file. Either form is unified with the
// embedded #Config schema, which is closed: unknown fields are errors.
// Loading then applies defaults and checks everything the schema cannot
// express (alphabet well-formed, generator symbols in the alphabet, matrix
// shapes, seed mesh and cursor usable), so that a bad configuration is
// reported once, before any string is generated.
package config
