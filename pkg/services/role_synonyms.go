package services

import (
	"strings"
	"sync"
)

// RoleSynonymGroup is a bucket of interchangeable role-name fragments.
type RoleSynonymGroup struct {
	Name     string
	Synonyms []string
}

// defaultRoleSynonymGroups is checked in order; the first group with a synonym
// contained in the requested role wins. Mobile precedes frontend so that
// "React Native" resolves to mobile.
var defaultRoleSynonymGroups = []RoleSynonymGroup{
	{Name: "backend", Synonyms: []string{"backend", "back-end", "back end", "server", "api", "node", "golang", "java", "python", "django", "spring"}},
	{Name: "mobile", Synonyms: []string{"mobile", "android", "ios", "flutter", "react native", "kotlin", "swift"}},
	{Name: "frontend", Synonyms: []string{"frontend", "front-end", "front end", "react", "angular", "vue", "web developer", "ui developer"}},
	{Name: "devops", Synonyms: []string{"devops", "dev ops", "sre", "site reliability", "platform engineer", "infrastructure", "cloud engineer"}},
	{Name: "qa", Synonyms: []string{"qa", "quality", "test", "sdet"}},
	{Name: "design", Synonyms: []string{"design", "ux", "user experience"}},
	{Name: "manager", Synonyms: []string{"manager", "scrum master", "delivery lead", "project lead", "product owner"}},
}

// RoleSynonyms is a lookup table over synonym groups, built once.
// It maps group to synonyms and synonym to group.
type RoleSynonyms struct {
	groups    []RoleSynonymGroup
	bySynonym map[string]int
}

// NewRoleSynonyms lower-cases and indexes groups. Group order is preserved.
func NewRoleSynonyms(groups []RoleSynonymGroup) *RoleSynonyms {
	rs := &RoleSynonyms{
		groups:    make([]RoleSynonymGroup, len(groups)),
		bySynonym: make(map[string]int),
	}
	for i, g := range groups {
		norm := RoleSynonymGroup{Name: g.Name, Synonyms: make([]string, 0, len(g.Synonyms))}
		for _, s := range g.Synonyms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			norm.Synonyms = append(norm.Synonyms, s)
			if _, taken := rs.bySynonym[s]; !taken {
				rs.bySynonym[s] = i
			}
		}
		rs.groups[i] = norm
	}
	return rs
}

var (
	defaultRoleSynonyms     *RoleSynonyms
	defaultRoleSynonymsOnce sync.Once
)

// DefaultRoleSynonyms returns the shared table for the built-in groups.
func DefaultRoleSynonyms() *RoleSynonyms {
	defaultRoleSynonymsOnce.Do(func() {
		defaultRoleSynonyms = NewRoleSynonyms(defaultRoleSynonymGroups)
	})
	return defaultRoleSynonyms
}

// GroupOf returns the first group (in table order) with a synonym contained in roleName.
func (rs *RoleSynonyms) GroupOf(roleName string) (string, bool) {
	i := rs.groupIndex(strings.ToLower(roleName))
	if i < 0 {
		return "", false
	}
	return rs.groups[i].Name, true
}

// GroupForSynonym looks up the group a single synonym belongs to.
func (rs *RoleSynonyms) GroupForSynonym(synonym string) (string, bool) {
	i, ok := rs.bySynonym[strings.ToLower(strings.TrimSpace(synonym))]
	if !ok {
		return "", false
	}
	return rs.groups[i].Name, true
}

// Match reports whether an employee's role satisfies a requested role: either
// the employee's role contains the requested string, or the requested role
// resolves to a group and the employee's role contains any synonym of it.
func (rs *RoleSynonyms) Match(requestedRole, employeeRole string) bool {
	req := strings.ToLower(strings.TrimSpace(requestedRole))
	emp := strings.ToLower(employeeRole)
	if req == "" {
		return false
	}
	if strings.Contains(emp, req) {
		return true
	}

	i := rs.groupIndex(req)
	if i < 0 {
		return false
	}
	for _, s := range rs.groups[i].Synonyms {
		if strings.Contains(emp, s) {
			return true
		}
	}
	return false
}

func (rs *RoleSynonyms) groupIndex(lowerRole string) int {
	for i, g := range rs.groups {
		for _, s := range g.Synonyms {
			if strings.Contains(lowerRole, s) {
				return i
			}
		}
	}
	return -1
}
