/*
 * dbt.go
 *
 * Text transforms for dbt model files produced by the splitter: enabling
 * the final model's config, wiring drop-table post hooks for intermediate
 * models, and rewriting table references to ref() calls.
 *
 * These are structural string substitutions, not template evaluation; the
 * config block is carried through the split verbatim apart from the edits
 * below.
 */
package dbt

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	enabledOff = regexp.MustCompile(`enabled[ ]*=[ ]*false`)
	postHook   = regexp.MustCompile(`post_hook\s*=\s*\[(\s*)`)
)

// Ref renders a ref() call for a model name, with the leading space that
// lets it replace the whitespace consumed by reference rewriting.
func Ref(name string) string {
	return fmt.Sprintf(` {{ ref(%q) }}`, name)
}

// EnableModel flips `enabled = false` to true inside a model config.
// A config without the parameter is returned unchanged; the model then
// follows the project-level default, which is enabled.
func EnableModel(cfg string) string {
	return enabledOff.ReplaceAllString(cfg, "enabled = true")
}

/*
 * AddDropHooks prepends a drop-table statement for every intermediate
 * model to the config's post_hook list, preserving the list's own leading
 * spacing so the result matches the file's formatting.
 *
 * A config without a post_hook list is an error: inventing one would need
 * knowledge of where inside the config call it may legally go.
 */
func AddDropHooks(cfg string, refs []string) (string, error) {
	m := postHook.FindStringSubmatch(cfg)
	if m == nil {
		return "", fmt.Errorf("post_hook list not found in model config; add one so drop statements can be injected")
	}
	spacing := m[1]
	if spacing == "" {
		spacing = "\n    "
	}

	var b strings.Builder
	b.WriteString("post_hook = [")
	b.WriteString(spacing)
	for _, r := range refs {
		b.WriteString("'drop table")
		b.WriteString(Ref(r))
		b.WriteString("',")
		b.WriteString(spacing)
	}
	return postHook.ReplaceAllLiteralString(cfg, b.String()), nil
}

// Rename maps the in-script name of a unit to the model name its file
// will carry after the split.
type Rename struct {
	Old string
	New string
}

/*
 * RewriteRefs replaces FROM/JOIN references to each renamed unit with a
 * ref() call to its new model, so the split files resolve each other
 * through the dependency graph instead of the now-gone CTE names.
 * Matching is word-bounded and keyword-case-insensitive.
 */
func RewriteRefs(body string, renames []Rename) string {
	for _, rn := range renames {
		re := regexp.MustCompile(`(?i)\b(from|join)\s+` + regexp.QuoteMeta(rn.Old) + `\b`)
		body = re.ReplaceAllString(body, "${1}"+Ref(rn.New))
	}
	return body
}
