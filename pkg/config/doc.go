/*
Package config loads the replacement rules and tuning knobs for recode.

	            +-------------+
	            |   Config    |
	            |   (Rules)   |
	            +------+------+
	                   |
	   +--------+------+------+--------+
	   |        |             |        |
	+--+--+  +--+--+      +---+--+  +--+---+
	| YAML|  | JSON|      |  HCL |  | TOML |
	+-----+  +-----+      +------+  +------+

🎯 Purpose:
- Reads rule files in any registered format, picked by extension
- Reads the legacy "words" format (one "old new" pair per line)
- Validates rules and tuning values before any file is touched

🔄 Flow:
1. Load picks a Parser with CanParse
2. The Parser decodes into Config with unknown fields rejected
3. Validate normalises defaults and rejects empty keys and bad globs
4. Config.RuleMap hands an ordered rules.Map to the engine

📝 Words format:

	# comment line, skipped
	oldtoken newvalue

Each line is split on the first space only. The value's first character is
upper-cased on load; nothing else about its casing is changed.
*/
package config
