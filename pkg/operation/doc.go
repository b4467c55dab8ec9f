/*
Package operation wires the charset, collect, rewrite, engine and rename
packages into the two user facing workflows.

	+-------------+       +-------------+
	|  Replacer   |       |   Renamer   |
	+------+------+       +------+------+
	       |                     |
	       |              +------+------+
	       |              |    Plan     |
	       |              |  (names)    |
	       |              +------+------+
	       |                     |
	+------+---------------------+------+
	|     Engine (contents, barrier)    |
	+------+---------------------+------+
	                             |
	                      +------+------+
	                      |  Executor   |
	                      | files, dirs |
	                      +-------------+

🎯 Purpose:
- Replacer runs one content pass with a rule map
- Renamer plans name changes, rewrites references to the old names, then
  moves files and directories

🔄 Rename flow:
1. Plan file and directory renames from entry names
2. Rewrite contents with old file name -> new file name
3. Rewrite contents with old directory path (relative to the parent of the
   root) -> new directory path, followed by the base rules
4. Move files, then directories, deepest first
5. Optionally rename the root itself
6. Optionally write a record of the plan

Contents are always rewritten before anything moves, so every path the
engine opens still exists.

🔍 Example:

	r := operation.NewReplacer(operation.Options{Fs: afero.NewOsFs(), Rules: rules.DefaultObjectRenames()})
	summary, err := r.Run(ctx, "/path/to/code")
*/
package operation
