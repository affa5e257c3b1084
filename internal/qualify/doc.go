// Package qualify spells references to package-level declarations by
// import path, so the emitted code does not depend on the call site's
// imports or on names shadowing them in the output package.
package qualify
