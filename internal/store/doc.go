// Package store executes predicate queries against SQLite.
//
// A Store owns one table per entity schema. Tables are created from the schemas
// at Open; every field column is NOT NULL so that SQL three-valued logic never
// disagrees with queryir.Matches.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Every row query ends with ORDER BY ..., id ASC
//   - Identical databases return identical pages
//
// Parameterized SQL
//   - All values are bound as parameters by querysql; identifiers come from
//     the schemas only
//
// Shared Case Folding
//   - The sqlite3_sieve driver registers casefold() on every connection, backed
//     by queryir.Fold, so MATCH behaves the same in SQL and in memory
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - A single pooled connection, as SQLite allows one writer
package store
