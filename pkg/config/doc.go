/*
Package config loads and validates export profiles.

	            +-------------+
	            |    File     |
	            |  (Profiles) |
	            +------+------+
	                   |
	   +--------+------+------+--------+
	   |        |             |        |
	+--+--+ +---+--+      +---+--+ +---+--+
	| YAML| | JSON |      |  HCL | |  XML |
	+-----+ +------+      +------+ +------+

🎯 Purpose:
- Parses a configuration document into typed profiles
- Rejects malformed shapes once, at load time, before any export pass
- Resolves the profile of a project (exact name, then "*")

🔄 Flow:
1. Parser chosen by file extension
2. Format specific structs converted to the shared model
3. Validate compiles route patterns, checks category keys and target selector arity
4. ProfileFor hands the matching profile to the exporter

🔍 Example:

	cfg, err := config.Load(ctx, "export.yaml")
	if err != nil {
		return err
	}
	profile, err := cfg.ProfileFor("Digitised Manuscripts")
*/
package config
