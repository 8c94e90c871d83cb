// Package diag defines the diagnostic model shared by every phase of abigen.
//
// Two kinds of findings exist:
//
//   - Fatal conditions (bad indentation, malformed declarations, unknown
//     types, duplicate names, unresolved doc links) are returned as *Error and
//     abort the run. The compiler never produces a partial ABI model.
//   - Advisory findings (missing documentation, unrecognized top-level
//     declarations) are sent through a Reporter as SevWarning and usually end
//     up in a Bag owned by the driver.
//
// Code values are grouped by phase: 1xxx reader, 2xxx declaration syntax,
// 3xxx semantics, 4xxx layout, 5xxx IO and project configuration. Fprint
// renders diagnostics for terminals; colors come from fatih/color.
package diag
