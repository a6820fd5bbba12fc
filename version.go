// version.go
package vrl

// Version of the language implementation.
const Version = "0.1.0"
