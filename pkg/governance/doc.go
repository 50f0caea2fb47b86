// Package governance statically audits CIP-0116 schema documents before they
// are trusted as a validation source.
//
// # Overview
//
// The checker is a pure function over one document. It never mutates the
// document and reports structured violations that name the offending
// definition key. Three rules guard publication:
//
//   - allowed-fields: every field of a top-level definition is whitelisted
//   - title: every definition's title is a string equal to its key
//   - ref-closure: every $ref, anywhere in the document, names a definition
//
// Definition rules run per definition in sorted key order, so the failure
// order is deterministic: for each key the whitelist check precedes the title
// check, and reference closure runs last.
//
// # Usage Example
//
// Fail fast for publication:
//
//	if err := governance.CheckRefs(doc); err != nil {
//		var gerr *governance.Error
//		if errors.As(err, &gerr) {
//			log.Fatalf("%s: %s", gerr.Key, gerr.Message)
//		}
//	}
//
// Full report with project configuration:
//
//	cfg, _ := governance.LoadConfigFromDir(".")
//	report := governance.NewEngine(cfg, governance.WithMetrics(metrics)).Check(doc)
//	for _, v := range report.Violations {
//		fmt.Println(v.Rule, v.Key, v.Message)
//	}
//
// # Configuration
//
// A cip116-governance.yaml file can enable optional rules, override
// severities and extend the field whitelist:
//
//	version: v1
//	rules:
//	  unreferenced-definition: true
//	severities:
//	  unreferenced-definition: warning
//	extra_allowed_fields:
//	  - deprecated
//
// # Related Packages
//
//   - pkg/schema: Documents and the node tree the rules walk
//   - pkg/cli: The check command
package governance
