// Package config provides configuration for tablelink link operations.
//
// A LinkConfig describes one operation: the source and destination files,
// the key selection, the columns to copy and where to write the result. It
// can be loaded from YAML with ${VAR} environment substitution:
//
//	cfg := config.NewLinkConfig()
//	if err := config.Load("link.yaml", cfg); err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// A minimal file:
//
//	source:
//	  path: customers.csv
//	destination:
//	  path: orders.xlsx
//	  skip: 2
//	key:
//	  mode: manual
//	  source: cust_id
//	  destination: client_id
//	columns: [email, phone]
//
// The command line binds the same keys through viper, so every field can also
// be set with a flag or a TABLELINK_* environment variable.
package config
