package sieve_test

import (
	"fmt"
	"log"

	"github.com/aretw0/sieve"
)

// ExampleValidate demonstrates validating in-memory YAML against an
// in-memory schema, without touching the filesystem.
func ExampleValidate() {
	// 1. Compile the schema. Leaves are validator expressions.
	s, err := sieve.MakeSchemaFromString(`
name: str()
age: int(min=0, max=200)
`, "person.schema")
	if err != nil {
		log.Fatal(err)
	}

	// 2. Load the data documents to check.
	data, err := sieve.MakeDataFromString(`
name: Bill
age: 26
`)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Validate. The error aggregates failures; results carry the
	// per-document detail either way.
	results, err := sieve.Validate(s, data, true)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Println(r)
	}
	// Output:
	// Data '<string>' is valid against schema 'person.schema'
}

// ExampleValidate_includes demonstrates named sub-schemas: a second
// YAML document registers includes the first can reference.
func ExampleValidate_includes() {
	s, err := sieve.MakeSchemaFromString(`
servers: list(include('server'))
---
server:
  host: str()
  port: int(min=1, max=65535)
`, "fleet.schema")
	if err != nil {
		log.Fatal(err)
	}

	data, err := sieve.MakeDataFromString(`
servers:
  - host: web-01
    port: 443
  - host: db-01
    port: 99999
`)
	if err != nil {
		log.Fatal(err)
	}

	_, err = sieve.Validate(s, data, true)
	fmt.Println(err != nil)
	// Output:
	// true
}
