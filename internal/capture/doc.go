// Package capture finds the outer bindings a projection reads.
//
// A projection function cannot close over the call site's variables, so
// every local, parameter, receiver member and package variable a selection
// references becomes an explicit parameter of the generated function.
// Constants, enum members, functions and types are referenced directly and
// never captured.
package capture
