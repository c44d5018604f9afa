// Package reference implements persistence for reference orbit tables.
//
// Two formats are supported and selected once from the file extension:
// structured text (".json", {"ID": [x_m, y_m]}) which is read and written,
// and the legacy MATLAB level-5 matrix container (".mat") which is read only.
// FileRepository exposes both behind the Repository interface the orbit
// service depends on.
package reference
