// Package schema holds the per-era CIP-0116 schema documents and the store
// that serves them.
//
// A Document is decoded once, wrapped in an immutable Node tree and never
// mutated afterwards. Node distinguishes objects, sequences and scalars so
// traversals such as reference collection visit every nested value.
//
// Documents reach the store through a Loader, which fetches one file per era
// from a Source (the embedded copies, a directory, S3, or any of those behind
// a Redis cache) and parses them concurrently.
//
//	store, err := schema.LoadEmbedded(ctx)
//	doc, err := store.Document(schema.Babbage)
//	for _, name := range doc.DefinitionNames() { ... }
package schema
