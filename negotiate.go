package hxres

import (
	"strconv"
	"strings"
)

// DefaultFormatName is the format chosen when neither negotiation nor the
// caller's default names one.
const DefaultFormatName = "hal"

// Preference is one media range of an Accept header.
type Preference struct {
	MediaType string
	Quality   float64
}

// MediaTypes lists the media types a format answers to.
type MediaTypes struct {
	Format string
	Types  []string
}

// ParseAccept parses an Accept header into its media ranges, in header
// order. Quality defaults to 1 and is clamped to [0, 1]; entries with an
// unparsable quality are dropped. Media type parameters other than q are
// ignored.
func ParseAccept(header string) []Preference {
	var prefs []Preference
	for _, entry := range strings.Split(header, ",") {
		params := strings.Split(entry, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		if mt == "*" {
			mt = "*/*"
		}
		pref := Preference{MediaType: mt, Quality: 1}
		valid := true
		for _, param := range params[1:] {
			key, value, _ := strings.Cut(strings.TrimSpace(param), "=")
			if !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				valid = false
				break
			}
			pref.Quality = min(max(q, 0), 1)
		}
		if valid {
			prefs = append(prefs, pref)
		}
	}
	return prefs
}

// SelectFormat picks the format that best satisfies accept.
//
// A non-empty override wins unconditionally. Otherwise each format scores
// the quality of its best-matching media type, where a media type's quality
// comes from the most specific range matching it (exact, then type/*, then
// */*). The highest positive score wins; ties go to the format listed first.
// When nothing matches the result is def, or DefaultFormatName when def is
// empty.
func SelectFormat(accept string, formats []MediaTypes, override, def string) string {
	if override != "" {
		return override
	}
	fallback := def
	if fallback == "" {
		fallback = DefaultFormatName
	}
	prefs := ParseAccept(accept)
	if len(prefs) == 0 {
		return fallback
	}

	best, bestQ := "", 0.0
	for _, f := range formats {
		for _, mt := range f.Types {
			if q := quality(strings.ToLower(mt), prefs); q > bestQ {
				best, bestQ = f.Format, q
			}
		}
	}
	if best == "" {
		return fallback
	}
	return best
}

func quality(mt string, prefs []Preference) float64 {
	typ, _, _ := strings.Cut(mt, "/")
	specificity, q := 0, 0.0
	for _, p := range prefs {
		s := 0
		switch {
		case p.MediaType == mt:
			s = 3
		case p.MediaType == typ+"/*":
			s = 2
		case p.MediaType == "*/*":
			s = 1
		default:
			continue
		}
		if s > specificity || s == specificity && p.Quality > q {
			specificity, q = s, p.Quality
		}
	}
	return q
}
