package selection

import "image/color"

// colorAccessor reads and writes whichever color property a material has.
type colorAccessor struct {
	get func() color.RGBA
	set func(color.RGBA)
}

// resolveColor probes the color capabilities in fixed order: legacy
// diffuse, then albedo, then base color.
func resolveColor(m Material) (colorAccessor, bool) {
	switch c := m.(type) {
	case DiffuseColorer:
		return colorAccessor{get: c.DiffuseColor, set: c.SetDiffuseColor}, true
	case AlbedoColorer:
		return colorAccessor{get: c.AlbedoColor, set: c.SetAlbedoColor}, true
	case BaseColorer:
		return colorAccessor{get: c.BaseColor, set: c.SetBaseColor}, true
	}
	return colorAccessor{}, false
}

// colorCache memoizes resolveColor per material.
type colorCache map[Material]*colorAccessor

func (cc colorCache) lookup(m Material) (colorAccessor, bool) {
	if m == nil {
		return colorAccessor{}, false
	}
	acc, seen := cc[m]
	if !seen {
		if a, ok := resolveColor(m); ok {
			acc = &a
		}
		cc[m] = acc
	}
	if acc == nil {
		return colorAccessor{}, false
	}
	return *acc, true
}

func (cc colorCache) forget(m Material) {
	delete(cc, m)
}
