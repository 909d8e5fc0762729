// Package guard provides ConstructorGuard, which lets value types detect that
// they were built as a zero value instead of through their constructor.
package guard
