package model

// RepoContributor is a single repository's view of a contributor, as returned
// by the contributors endpoint.
type RepoContributor struct {
	Login         string
	Contributions int
}

// Contributor is a deduplicated contributor identity aggregated across
// repositories. Logins are deduplicated case-insensitively; Login keeps the
// first-seen casing for display.
type Contributor struct {
	Login         string   `json:"login"`
	Contributions int      `json:"contributions"`
	Repos         []string `json:"repos"`
	Internal      bool     `json:"internal"`
}

// RepoCount returns the number of distinct repositories this identity
// contributed to.
func (c Contributor) RepoCount() int {
	return len(c.Repos)
}
