/*
Package sieve validates YAML documents against declarative schemas.

A schema is a YAML document whose leaves are validator expressions:

	name: str()
	retries: int(min=0, max=10)
	mode: enum('fast', 'safe')
	servers: list(include('server'))
	---
	server:
	  host: str()
	  port: int(required=False)

Schemas are compiled once with MakeSchema (or MakeSchemaFromString)
and reused across documents. Validate runs a batch of data documents
through the schema and returns one Result per document plus an *Error
aggregate when anything failed:

	s, err := sieve.MakeSchema("schema.yaml")
	if err != nil {
		log.Fatal(err)
	}
	data, err := sieve.MakeData("deploy.yaml")
	if err != nil {
		log.Fatal(err)
	}
	results, err := sieve.Validate(s, data, true)
	if err != nil {
		for _, r := range results {
			fmt.Println(r)
		}
	}

The validator set, the combinators (any, all, notany, subset) and the
include mechanism live in pkg/validators; the compilation and walking
machinery lives in pkg/schema.
*/
package sieve
