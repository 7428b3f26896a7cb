// Package capabilities declares the agent-routing capability registry: the
// set of competencies each subquestion path declares to the Plan stage's
// decomposition prompt.
package capabilities

// PathCapability describes one routing path's declared competency and its
// declared behavior flags. Reserved and WebFallback are loaded but not read
// by the orchestrator: agents.NewRegistry fixes which paths refuse, and the
// rag agent's web fallback depends only on whether a WebSearcher is set.
type PathCapability struct {
	Path        string `yaml:"path" json:"path"`
	Competency  string `yaml:"competency" json:"competency"`
	Reserved    bool   `yaml:"reserved" json:"reserved"`
	WebFallback bool   `yaml:"web_fallback" json:"web_fallback"`
}

// registryFile is the shape of the embedded config/paths.yaml.
type registryFile struct {
	Paths []PathCapability `yaml:"paths"`
}
