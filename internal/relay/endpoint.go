package relay

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/securelay/api/internal/domain"
)

// Rand is the randomness used to pick endpoints and mirrors.
// *rand.Rand satisfies it; tests pin it to make selection deterministic.
type Rand interface {
	Intn(n int) int
}

// globalRand draws from math/rand's shared, goroutine-safe source.
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Directory maps endpoint IDs to the base URLs of their mirrors.
// It is immutable once built.
type Directory struct {
	ids  []domain.EndpointID
	urls map[domain.EndpointID][]string
}

// NewDirectory validates raw and returns a Directory. Base URLs lose any
// trailing slash; an empty directory or an ID without URLs is an error.
func NewDirectory(raw map[string][]string) (*Directory, error) {
	if len(raw) == 0 {
		return nil, errEmptyDirectory
	}
	d := &Directory{urls: make(map[domain.EndpointID][]string, len(raw))}
	for id, urls := range raw {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("endpoint directory: blank endpoint id")
		}
		clean := make([]string, 0, len(urls))
		for _, u := range urls {
			u = strings.TrimRight(strings.TrimSpace(u), "/")
			if u != "" {
				clean = append(clean, u)
			}
		}
		if len(clean) == 0 {
			return nil, fmt.Errorf("endpoint directory: %q has no base URLs", id)
		}
		eid := domain.EndpointID(id)
		d.ids = append(d.ids, eid)
		d.urls[eid] = clean
	}
	// Map order is random; keep a stable order so a pinned Rand is reproducible.
	sort.Slice(d.ids, func(i, j int) bool { return d.ids[i] < d.ids[j] })
	return d, nil
}

// IDs returns the endpoint IDs in sorted order.
func (d *Directory) IDs() []domain.EndpointID {
	return append([]domain.EndpointID(nil), d.ids...)
}

// URLs returns the base URLs for id.
func (d *Directory) URLs(id domain.EndpointID) ([]string, bool) {
	urls, ok := d.urls[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), urls...), true
}

// Has reports whether id is known.
func (d *Directory) Has(id domain.EndpointID) bool {
	_, ok := d.urls[id]
	return ok
}

// resolve picks a base URL for id, or for a random ID when id is empty.
func (d *Directory) resolve(id domain.EndpointID, r Rand) (string, domain.EndpointID, error) {
	if id == "" {
		id = d.ids[r.Intn(len(d.ids))]
	}
	urls, ok := d.urls[id]
	if !ok {
		return "", id, &EndpointError{ID: string(id)}
	}
	return urls[r.Intn(len(urls))], id, nil
}
