// Package validation scores detected components against authored fixtures.
//
// A fixture (TestCase) lists expected components with property values and
// optional per-property tolerances. The Engine matches each expected component
// to a detected one by type and, when bounds are given, by position, then
// compares every property numerically, as a color or as a string. Results
// carry per-property deviations and an accuracy percentage.
//
// The built-in catalog is embedded from fixtures/*.yaml; more fixtures can be
// loaded from a directory with Catalog.LoadDir.
package validation
