// Package services contains the application services of the gophtasks CLI:
// session handling (register, login, logout, restoring a stored login) and
// task operations, including attachment uploads.
package services
