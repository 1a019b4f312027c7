package intsteps

import "fmt"

// placeholders hands out u, u_1, u_2, ... for u-substitutions. The counter
// never goes back, so no two substitutions in one render share a name.
type placeholders struct {
	taken map[string]struct{}
	next  int
}

func newPlaceholders(taken map[string]struct{}) *placeholders {
	return &placeholders{taken: taken}
}

// acquire returns the next name not in taken.
func (p *placeholders) acquire() string {
	for {
		name := "u"
		if p.next > 0 {
			name = fmt.Sprintf("u_%d", p.next)
		}
		p.next++
		if _, clash := p.taken[name]; !clash {
			return name
		}
	}
}
