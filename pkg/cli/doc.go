// Package cli implements the cip116 command-line tool.
//
// Commands:
//
//	cip116 check    [-era E] [-dir D] [-config F] [-format text|json|github] [-watch] [-rules] [-init-config]
//	cip116 validate -era E -type T [-file F] [-dir D]
//	cip116 coverage -era E -fixtures D [-dir D] [-strict]
//	cip116 types    [-era E] [-dir D]
//
// Without -dir every command works on the embedded era documents. check
// exits non-zero when any era has an error-severity governance violation, is
// not a valid draft 2020-12 schema, or fails to compile.
//
// The coverage fixture directory is supplied by the user. It holds one
// <Type>.json file per definition, shaped {"valid": [...], "invalid": [...]}.
// testdata/fixtures/babbage carries a small example set.
package cli
