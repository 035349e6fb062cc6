// Package link left-joins selected source columns into a destination
// dataset on a single key column.
//
// A link runs in three steps. The key is resolved, either automatically
// from the column names both files share or manually from an explicit
// (source, destination) pair. The selected columns are projected so the key
// appears exactly once. Then every destination row is kept and enriched
// with the values of the first source row whose key matches:
//
//	engine := link.NewEngine()
//	result, err := engine.Link(ctx, link.Request{
//	    Source:      core.Origin{Path: "crm.csv"},
//	    Destination: core.Origin{Path: "customers.xlsx"},
//	    Mode:        link.KeyModeAutomatic,
//	    Key:         "id",
//	    Columns:     []string{"email", "tier"},
//	    Output:      "customers_linked.xlsx",
//	})
//
// Failures are *errors.Error values whose type identifies the cause, and no
// output file is written unless the whole link succeeds.
package link
