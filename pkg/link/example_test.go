package link_test

import (
	"fmt"

	"github.com/ajitpratap0/tablelink/pkg/link"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

func ExampleMerge() {
	customers := tabular.FromRecords("customers", []string{"id", "name"}, [][]string{
		{"1", "A"},
		{"2", "B"},
	})
	ages := tabular.FromRecords("ages", []string{"id", "age"}, [][]string{
		{"1", "30"},
		{"3", "40"},
	})

	projection, err := link.Project([]string{"age"}, "id")
	if err != nil {
		panic(err)
	}
	merged, stats := link.Merge(customers, ages, projection, link.MatchOptions{})

	fmt.Println(merged.Columns)
	for _, row := range merged.Rows {
		fmt.Println(row[0].String(), row[1].String(), row[2].Valid)
	}
	fmt.Printf("matched=%d unmatched=%d\n", stats.Matched, stats.Unmatched)
	// Output:
	// [id name age]
	// 1 A true
	// 2 B false
	// matched=1 unmatched=1
}

func ExampleResolveAutomaticKey() {
	binding, err := link.ResolveAutomaticKey("id", []string{"id", "email"}, []string{"name", "id"})
	fmt.Println(binding.JoinKey(), err)

	_, err = link.ResolveAutomaticKey("email", []string{"id", "email"}, []string{"name", "id"})
	fmt.Println(err != nil)
	// Output:
	// id <nil>
	// true
}
