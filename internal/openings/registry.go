// Package openings decides which opening book a game belongs to and
// accumulates win/draw/loss statistics per position and move.
package openings

import (
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/pgn"
)

const ecoCodeLength = 3

// ecoRange is an inclusive range of opening codes such as B10-B19
type ecoRange struct {
	lo, hi string
}

func (r ecoRange) contains(code string) bool {
	return code >= r.lo && code <= r.hi
}

// Handler is one configured opening book
type Handler struct {
	Name   string
	ranges []ecoRange
}

// Covers reports whether code falls in one of the handler's ranges
func (h *Handler) Covers(code string) bool {
	for _, r := range h.ranges {
		if r.contains(code) {
			return true
		}
	}
	return false
}

// Registry finds the handler of a record by its opening code. The first
// configured handler covering the code wins.
type Registry struct {
	handlers []*Handler
	memo     *cache.Cache
}

// NewRegistry builds a registry from the configured handlers
func NewRegistry(settings conf.OpeningsSettings) (*Registry, error) {
	r := &Registry{memo: cache.New(cache.NoExpiration, 0)}

	for _, hs := range settings.Handlers {
		h := &Handler{Name: strings.TrimSpace(hs.Name)}
		for _, rangeText := range hs.ECO {
			rng, err := parseRange(rangeText)
			if err != nil {
				return nil, errors.New(err).
					Component("openings").
					Category(errors.CategoryConfiguration).
					Context("handler", h.Name).
					Build()
			}
			h.ranges = append(h.ranges, rng)
		}
		r.handlers = append(r.handlers, h)
	}
	return r, nil
}

// Handlers returns the configured handlers in order
func (r *Registry) Handlers() []*Handler {
	return r.handlers
}

// Find returns the handler claiming rec, or false when none does
func (r *Registry) Find(rec *pgn.Record) (*Handler, bool) {
	return r.FindByCode(rec.ECO)
}

// FindByCode returns the handler covering an opening code
func (r *Registry) FindByCode(eco string) (*Handler, bool) {
	code := normalizeCode(eco)
	if v, ok := r.memo.Get(code); ok {
		h := v.(*Handler)
		return h, h != nil
	}

	var found *Handler
	for _, h := range r.handlers {
		if h.Covers(code) {
			found = h
			break
		}
	}
	r.memo.Set(code, found, cache.NoExpiration)
	return found, found != nil
}

func normalizeCode(eco string) string {
	code := strings.ToUpper(strings.TrimSpace(eco))
	if len(code) > ecoCodeLength {
		code = code[:ecoCodeLength]
	}
	return code
}

// parseRange accepts "C42" or "B10-B19"
func parseRange(rangeText string) (ecoRange, error) {
	rangeText = strings.ToUpper(strings.TrimSpace(rangeText))
	lo, hi, isRange := strings.Cut(rangeText, "-")
	if !isRange {
		hi = lo
	}
	if len(lo) != ecoCodeLength || len(hi) != ecoCodeLength || lo > hi {
		return ecoRange{}, errors.Newf("invalid eco range %q", rangeText).
			Component("openings").
			Category(errors.CategoryValidation).
			Build()
	}
	return ecoRange{lo: lo, hi: hi}, nil
}
