// Package harness runs query scenarios: YAML files that name an entity, a set
// of records, criteria and named filters, and the results a query over them
// must produce.
//
// Each scenario runs in a fresh in-memory SQLite store. Besides the scenario's
// own assertions, every run checks that the SQL backend and the in-memory
// evaluator (queryir.Filter) select the same records, so a scenario doubles as
// a parity test for the predicate compiler.
//
// A scenario file:
//
//	name: customers_named_filters
//	description: Assemble named customer filters from a map
//	entity: Customer
//	filters:
//	  name: rober
//	  age: 17
//	assertions:
//	  - type: result_ids
//	    ids: [2]
//
// Golden files capture the compiled SQL, its parameters and the resulting ids
// as canonical JSON; see RunWithGolden.
package harness
