package compiler

// Config carries the enumerated compiler options. It is a plain value passed
// into the facade at construction; workspace-aware callers wrap it with
// WithClasspath rather than mutating shared state.
type Config struct {
	SourceEncoding   string
	TargetVersion    string
	StarImports      []string
	InvokeDynamic    bool
	Groovydoc        bool
	ModernParser     bool
	Classpath        []string
	ScriptBaseClass  string
	ScriptExtensions []string
	StaticTypeCheck  bool
}

// DefaultConfig mirrors the server's stock compiler setup: UTF-8 sources,
// a current JVM target, the common star imports, and the modern parser.
func DefaultConfig() Config {
	return Config{
		SourceEncoding: "UTF-8",
		TargetVersion:  "17",
		StarImports: []string{
			"java.lang",
			"java.util",
			"java.io",
			"java.net",
			"groovy.lang",
			"groovy.util",
		},
		InvokeDynamic:    true,
		Groovydoc:        true,
		ModernParser:     true,
		ScriptExtensions: []string{".groovy", ".gvy", ".gy", ".gsh"},
	}
}

// WithClasspath returns a copy of the config with extra classpath entries
// appended.
func (c Config) WithClasspath(entries ...string) Config {
	if len(entries) == 0 {
		return c
	}
	cp := make([]string, 0, len(c.Classpath)+len(entries))
	cp = append(cp, c.Classpath...)
	cp = append(cp, entries...)
	c.Classpath = cp
	return c
}
