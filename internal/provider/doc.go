// Package provider defines the live reading source consumed by the reference
// orbit manager and ships a YAML replay implementation of it.
//
// The facility wire protocol is not modelled here: a Provider only has to
// return raw records (validity, millimeters, position, identifier).
package provider
