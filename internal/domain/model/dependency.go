package model

import "strings"

// DependencyRecord is a best-effort estimate of a repository's dependent
// count, scraped from a non-structured source rather than a real API.
type DependencyRecord struct {
	RepoName   string `json:"repo_name"`
	Dependents int    `json:"dependents"`
	Ecosystem  string `json:"ecosystem"`
	Package    string `json:"package,omitempty"`
}

// ecosystemPatterns maps repository name fragments to package ecosystems.
// Purely heuristic; order matters, first match wins.
var ecosystemPatterns = []struct {
	fragment  string
	ecosystem string
}{
	{"-go", "Go"},
	{"go-", "Go"},
	{"golang", "Go"},
	{"-js", "npm"},
	{"-node", "npm"},
	{"node-", "npm"},
	{"javascript", "npm"},
	{"typescript", "npm"},
	{"-py", "PyPI"},
	{"python", "PyPI"},
	{"-rs", "crates.io"},
	{"rust", "crates.io"},
	{"-rb", "RubyGems"},
	{"ruby", "RubyGems"},
	{"-java", "Maven"},
	{"-php", "Packagist"},
}

// InferEcosystem guesses the package ecosystem a repository publishes to from
// name patterns alone. Returns "unknown" when nothing matches.
func InferEcosystem(repoName string) string {
	name := strings.ToLower(repoName)
	for _, p := range ecosystemPatterns {
		if strings.Contains(name, p.fragment) {
			return p.ecosystem
		}
	}
	return "unknown"
}
