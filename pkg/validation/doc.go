// Package validation checks JSON values against the CIP-0116 era schemas.
//
// # Overview
//
// A Registry wraps one JSON-Schema compiler configured with the custom format
// predicates from pkg/formats and the discriminator keyword. Every era
// document in a schema.Store is registered as a resource; validators are
// compiled on demand for the pointer definitions/<Type> and kept in an LRU
// cache.
//
// Validation is a pure call returning an immutable Result, so one Validator
// can serve concurrent requests.
//
// # Usage Example
//
//	reg, err := validation.NewEmbeddedRegistry(ctx)
//	v, err := reg.ValidatorForType(ctx, schema.Babbage, "Address")
//	if errors.Is(err, schema.ErrUnknownType) { ... }
//
//	res := v.Validate("addr1vpu5vlrf4xkxv2qpwngf6cjhtw542ayty80v8dyr49rf5eg0yu80w")
//	for _, violation := range res.Violations {
//		fmt.Println(violation.InstanceLocation, violation.Message)
//	}
//
// # Discriminator
//
// Tagged unions are oneOf lists whose branches differ by a tag property. The
// discriminator keyword only asserts that an object instance has the property
// named by propertyName; it does not select a branch.
//
// # Coverage
//
// Coverage runs fixture files (<Type>.json with "valid" and "invalid" value
// lists) against an era and reports untested definitions.
//
// # Related Packages
//
//   - pkg/formats: Format predicates
//   - pkg/schema: Documents and the store
//   - pkg/api: HTTP validation endpoints
package validation
