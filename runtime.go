// runtime.go
//
// The stock function library. DefaultRegistry wires every builtin group
// into one registry; hosts that want a restricted surface register groups
// themselves.
package vrl

// DefaultRegistry returns a registry with the full stock library. The
// result is freshly built on every call, so hosts may extend their copy
// without affecting others.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerCoreFns(r)
	registerStringFns(r)
	registerParseFns(r)
	registerCryptoFns(r)
	registerCompressionFns(r)
	registerURLFns(r)
	return r
}
