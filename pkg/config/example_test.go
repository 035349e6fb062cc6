package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/tablelink/pkg/config"
)

// ExampleNewLinkConfig shows the defaults applied to every link.
func ExampleNewLinkConfig() {
	cfg := config.NewLinkConfig()

	fmt.Printf("Key mode: %s\n", cfg.Key.Mode)
	fmt.Printf("On collision: %s\n", cfg.OnCollision)
	fmt.Printf("Preview rows: %d\n", cfg.Formats.PreviewRows)

	// Output:
	// Key mode: automatic
	// On collision: overwrite
	// Preview rows: 5
}

// ExampleLoad demonstrates loading a link from YAML with environment
// variable substitution.
func ExampleLoad() {
	dir, err := os.MkdirTemp("", "tablelink-config-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("EXAMPLE_DATA_DIR", "/data")
	defer os.Unsetenv("EXAMPLE_DATA_DIR")

	path := filepath.Join(dir, "link.yaml")
	content := `
source:
  path: ${EXAMPLE_DATA_DIR}/customers.csv
destination:
  path: ${EXAMPLE_DATA_DIR}/orders.xlsx
  skip: 2
key:
  mode: manual
  source: cust_id
  destination: client_id
columns: [email]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Fatal(err)
	}

	cfg := config.NewLinkConfig()
	if err := config.Load(path, cfg); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	fmt.Println(cfg.Source.Path)
	fmt.Println(cfg.Destination.Skip, cfg.Key.Source, cfg.Key.Destination)
	fmt.Println(cfg.Formats.SheetName)

	// Output:
	// /data/customers.csv
	// 2 cust_id client_id
	// Sheet1
}
