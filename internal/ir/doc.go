// Package ir provides the value, record and schema types shared by every other
// sieve package.
//
// This package contains type definitions and pure helpers only. All other internal
// packages import ir; ir imports nothing internal. This keeps IR the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - IRValue is sealed: IRNull, IRString, IRInt, IRFloat, IRBool, IRArray, IRObject
//   - Numbers compare numerically regardless of int/float representation
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only input to hashing
//   - Sort and page directives are carried here but interpreted only by executors
package ir
