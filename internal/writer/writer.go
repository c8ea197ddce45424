/*
 * writer.go
 *
 * Maps a split result onto output model files and persists them.
 *
 * Naming follows the convention of the split workflow: CTE <name> becomes
 * <final>_<name>.sql, the trailing query becomes <final>.sql, and the
 * config directive is not a file of its own; it is re-attached to the
 * final model after being enabled (and, optionally, after drop hooks for
 * the intermediate models are injected).
 */
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cybertec-postgresql/ctesplit/internal/dbt"
	"github.com/cybertec-postgresql/ctesplit/internal/discovery"
	"github.com/cybertec-postgresql/ctesplit/internal/logger"
	"github.com/cybertec-postgresql/ctesplit/internal/splitter"
)

// OutputFile is one rendered model ready to be written: the base name
// (without extension) and the full file content.
type OutputFile struct {
	Name    string
	Content string
}

/*
 * Plan renders every unit of res into output files.  model is the base
 * name of the input script, finalName the base name of the final model;
 * both come straight from the job definition.  dropIntermediate wires
 * drop-table post hooks for the intermediate models into the config.
 */
func Plan(res *splitter.Result, model, finalName string, dropIntermediate bool) ([]OutputFile, error) {
	src := res.Source
	ctes := res.Ctes()

	// Every unit gets a new model name; references between units are
	// rewritten against the full mapping, the input model's own name
	// included.
	renames := make([]dbt.Rename, 0, len(ctes)+1)
	intermediates := make([]string, 0, len(ctes))
	for _, u := range ctes {
		newName := finalName + "_" + u.Name
		renames = append(renames, dbt.Rename{Old: u.Name, New: newName})
		intermediates = append(intermediates, newName)
	}
	renames = append(renames, dbt.Rename{Old: model, New: finalName})

	cfg := ""
	if d := res.Directive(); d != nil {
		cfg = dbt.EnableModel(d.Text(src))
		if dropIntermediate {
			withHooks, err := dbt.AddDropHooks(cfg, intermediates)
			if err != nil {
				return nil, err
			}
			cfg = withHooks
		}
	} else if dropIntermediate {
		return nil, fmt.Errorf("drop_intermediate requires a model config directive to attach hooks to")
	}

	files := make([]OutputFile, 0, len(ctes)+1)
	seen := make(map[string]bool)
	for _, u := range ctes {
		name := finalName + "_" + u.Name
		if seen[name] {
			logger.Errorf("duplicate CTE name %q: %s.sql will be overwritten", u.Name, name)
		}
		seen[name] = true
		files = append(files, OutputFile{
			Name:    name,
			Content: CleanScript(dbt.RewriteRefs(u.Text(src), renames)),
		})
	}

	final := CleanScript(dbt.RewriteRefs(res.Final().Text(src), renames))
	if cfg != "" {
		final = strings.TrimRight(cfg, "\n") + "\n\n" + final
	}
	files = append(files, OutputFile{Name: finalName, Content: final})

	return files, nil
}

/*
 * CleanScript normalizes one unit's text for its own file: leading and
 * trailing blank or comment-only lines go away, every line loses its
 * trailing spaces, and the result ends with exactly one newline.
 */
func CleanScript(s string) string {
	lines := strings.Split(s, "\n")

	start := 0
	for start < len(lines) && trivialLine(lines[start]) {
		start++
	}
	end := len(lines)
	for end > start && trivialLine(lines[end-1]) {
		end--
	}
	if start >= end {
		return ""
	}

	out := make([]string, 0, end-start)
	for _, ln := range lines[start:end] {
		out = append(out, strings.TrimRight(ln, " \t"))
	}
	return strings.Join(out, "\n") + "\n"
}

// trivialLine reports whether a line is blank or holds only a line comment.
func trivialLine(ln string) bool {
	t := strings.TrimSpace(ln)
	return t == "" || strings.HasPrefix(t, "--") || strings.HasPrefix(t, "//")
}

/*
 * RemoveStale deletes previous split outputs in dir: every <finalName>*.sql
 * except the input model itself.  Run before writing so renamed or removed
 * CTEs do not leave orphan files behind.
 */
func RemoveStale(dir, model, finalName string) error {
	names, err := discovery.ListSQL(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == model+".sql" {
			continue
		}
		if strings.HasPrefix(name, finalName) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("failed to remove stale output %s: %w", name, err)
			}
			logger.Debugf("removed stale output %s", name)
		}
	}
	return nil
}

// WriteAll persists every planned file into dir as <name>.sql.
func WriteAll(dir string, files []OutputFile) error {
	for _, f := range files {
		path := filepath.Join(dir, f.Name+".sql")
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debugf("wrote %s", path)
	}
	return nil
}
