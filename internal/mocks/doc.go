// Package mocks groups testify mocks of the domain interfaces, one sub-package per
// domain package. Each mock exposes an EXPECT() builder with typed Run/Return helpers.
package mocks
