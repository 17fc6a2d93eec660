package application

import (
	"sort"
	"strings"
	"sync"

	"github.com/ericfisherdev/orgpulse/internal/domain/model"
)

// MemberSet is a case-insensitive set of organization member logins, fetched
// once per run and used to classify contributors as internal or external.
type MemberSet map[string]struct{}

// NewMemberSet builds a MemberSet from raw logins.
func NewMemberSet(logins []string) MemberSet {
	set := make(MemberSet, len(logins))
	for _, login := range logins {
		set[strings.ToLower(login)] = struct{}{}
	}
	return set
}

// Contains reports membership, ignoring case.
func (m MemberSet) Contains(login string) bool {
	_, ok := m[strings.ToLower(login)]
	return ok
}

// contributorEntry is the mutable per-identity accumulator.
type contributorEntry struct {
	login         string
	contributions int
	repos         map[string]struct{}
}

// ContributorSet deduplicates contributor identities case-insensitively and
// accumulates their contribution counts and distinct repositories across all
// repositories processed. Safe for concurrent Add calls from a fan-out.
type ContributorSet struct {
	mu    sync.Mutex
	order []string
	byKey map[string]*contributorEntry
}

// NewContributorSet creates an empty ContributorSet.
func NewContributorSet() *ContributorSet {
	return &ContributorSet{
		byKey: make(map[string]*contributorEntry),
	}
}

// Add merges one repository's view of a contributor into the set. The same
// login seen with different casing collapses to one identity; the first-seen
// casing is kept for display.
func (s *ContributorSet) Add(login string, contributions int, repo string) {
	key := strings.ToLower(login)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byKey[key]
	if !ok {
		e = &contributorEntry{
			login: login,
			repos: make(map[string]struct{}),
		}
		s.byKey[key] = e
		s.order = append(s.order, key)
	}

	e.contributions += contributions
	e.repos[repo] = struct{}{}
}

// Len returns the number of distinct identities.
func (s *ContributorSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// Contributors materializes the set, classified against members and ranked by
// aggregate contribution count descending. Ties keep first-seen order.
func (s *ContributorSet) Contributors(members MemberSet) []model.Contributor {
	s.mu.Lock()
	defer s.mu.Unlock()

	contributors := make([]model.Contributor, 0, len(s.byKey))
	for _, key := range s.order {
		e := s.byKey[key]

		repos := make([]string, 0, len(e.repos))
		for repo := range e.repos {
			repos = append(repos, repo)
		}
		sort.Strings(repos)

		contributors = append(contributors, model.Contributor{
			Login:         e.login,
			Contributions: e.contributions,
			Repos:         repos,
			Internal:      members.Contains(e.login),
		})
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Contributions > contributors[j].Contributions
	})

	return contributors
}

// CountClassified partitions an already-classified contributor list into
// internal and external tallies. The two always sum to len(contributors).
func CountClassified(contributors []model.Contributor) (internal, external int) {
	for _, c := range contributors {
		if c.Internal {
			internal++
		} else {
			external++
		}
	}
	return internal, external
}
