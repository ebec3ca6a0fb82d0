// Package resolve expands macro invocations embedded in JSON documents.
//
// A macro invocation is an array whose first element is a string naming a
// macro in the resolver's [Table]:
//
//	{"Sand": ["KA5-texture-class->sand", "Ss"], "Clay": ["%", 2]}
//
// [Resolver.Resolve] walks a document depth first, left to right (object
// members in ascending key order), expanding invocations bottom-up: the
// arguments are resolved first, the macro is evaluated on the resolved
// arguments, and the macro's result is resolved again so that it may itself
// contain invocations (an included file may contain references, for
// example). Arrays whose first element is not a known macro name are plain
// data.
//
// Resolution never stops at the first problem. Every failure is collected
// into the [Result], and the value of a failed invocation is the invocation
// itself with its arguments resolved, so one pass reports every problem in
// a document.
//
// Each call to Resolve gets its own [Pass], holding the reference cache and
// the set of references being resolved (for cycle detection). A Resolver is
// immutable and safe for concurrent use; passes are not shared.
package resolve
