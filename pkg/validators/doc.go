/*
Package validators implements the checker units a compiled schema is
made of: primitive scalar checks (str, num, int, bool, enum, day,
timestamp, null, regex, mac, semver, ip, file_line), the structural
map and list validators, the any/all/notany/subset combinators, and
the late-bound include reference.

Every validator satisfies the Validator contract. IsValid performs the
validator's own check as a pure function of the value; constraints
(bounds, string refinements, key checks) run afterwards and only when
the own check passed. Containers and combinators expose their child
validators through Parent; recursion over keys and elements belongs to
the tree walker in package schema.

Validators are built through the Registry, an explicit table mapping
both short tags and display names to builders. Instances are immutable
after construction and safe to reuse across documents.
*/
package validators
