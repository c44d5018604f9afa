// Package beamline loads the static monitor collection of one beamline.
package beamline
