// Package value implements an immutable JSON value: a tagged union of null,
// boolean, number, string, array and object.
//
// Values are built with the constructors ([Null], [Bool], [Int], [Num],
// [Str], [Array], [Object]), decoded with [Parse], or converted from
// decoded Go data with [FromNative]. Constructors copy their inputs, and no
// method modifies its receiver; [Value.Set] and friends return new values.
//
// Numbers remember whether they were written without a fraction or exponent
// ([Value.IsIntegral]), so callers can distinguish 2 from 2.0 while
// [Value.Equal] still treats them as the same number.
package value
