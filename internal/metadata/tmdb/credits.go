package tmdb

import (
	"slices"
	"strings"
)

const (
	jobDirector = "Director"
	jobWriter   = "Writer"

	// StarCount is how many top-billed cast members make up Stars.
	StarCount = 3

	nameSeparator = ", "
)

// ExtractCredentials reduces raw credits to the director/writers/stars
// summary. Crew order is preserved; cast is ordered by billing.
func ExtractCredentials(c Credits) CredentialSet {
	var directors, writers []string
	for _, member := range c.Crew {
		switch member.Job {
		case jobDirector:
			directors = appendUnique(directors, member.Name)
		case jobWriter:
			writers = appendUnique(writers, member.Name)
		}
	}

	cast := slices.Clone(c.Cast)
	slices.SortStableFunc(cast, func(a, b CastMember) int { return a.Order - b.Order })

	var stars []string
	for _, member := range cast {
		if len(stars) == StarCount {
			break
		}
		stars = appendUnique(stars, member.Name)
	}

	return CredentialSet{
		Director: strings.Join(directors, nameSeparator),
		Writers:  strings.Join(writers, nameSeparator),
		Stars:    strings.Join(stars, nameSeparator),
	}
}

func appendUnique(names []string, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(names, name) {
		return names
	}
	return append(names, name)
}
