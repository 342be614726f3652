// Package testutil provides deterministic stand-ins for the parts of the
// application that are random in production: session tokens and step
// numbering.
package testutil
