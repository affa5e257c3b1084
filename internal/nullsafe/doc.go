// Package nullsafe rewrites optional member access into guarded access.
//
// Each maximal chain containing ?. becomes a selector.Guard that tests
// every nil-able operand of an optional access before evaluating the plain
// chain. A chain that is a member's whole value falls back to what the
// member's type holds when empty; a chain inside a larger expression falls
// back to the zero value of its own type.
package nullsafe
