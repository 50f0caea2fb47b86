package governance

import (
	"strings"

	"github.com/platinummonkey/cip116/pkg/schema"
)

// RefKey is the property naming a reference
const RefKey = "$ref"

// Reference is one $ref edge found in a document
type Reference struct {
	// Target is the definition key named by the last pointer segment
	Target string
	// Raw is the $ref value as written
	Raw string
	// Path locates the object holding the $ref, "/"-joined from the root
	Path string
	// Valid is false when the $ref value is not a string
	Valid bool
}

// CollectRefs walks the whole tree and returns every reference in visit order.
// A $ref value is not itself descended into.
func CollectRefs(root *schema.Node) []Reference {
	var refs []Reference
	root.Walk(func(path []string, node *schema.Node) bool {
		ref, ok := node.Get(RefKey)
		if !ok {
			return true
		}
		r := Reference{Path: strings.Join(path, "/")}
		if raw, isString := ref.AsString(); isString {
			r.Raw = raw
			r.Target = refTarget(raw)
			r.Valid = true
		}
		refs = append(refs, r)
		return true
	})
	return refs
}

// refTarget returns the unescaped final "/"-delimited segment of a pointer
func refTarget(ref string) string {
	seg := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		seg = ref[i+1:]
	}
	seg = strings.ReplaceAll(seg, "~1", "/")
	return strings.ReplaceAll(seg, "~0", "~")
}
