// Package drivers groups the database/sql driver registrations. Import one of
// its subpackages for its side effect before calling core.Open.
package drivers
