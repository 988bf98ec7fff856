package recipe

// PageProbe reports whether the indicator of an ingredient page (2 or 3) is
// lit.
type PageProbe interface {
	IsPageActive(page int) bool
}

// PageProbeFunc adapts a function to PageProbe.
type PageProbeFunc func(page int) bool

func (f PageProbeFunc) IsPageActive(page int) bool { return f(page) }

// Consolidate decides how many ingredient pages the recipe needs and folds
// the overflow list into the last of them. With overflow present the page
// indicators decide; otherwise a page counts when OCR found steps on it.
// Page 1 is always kept. The returned index is zero based.
func Consolidate(raw RecipeData, probe PageProbe) ([][]string, int) {
	extra := raw.Extra()

	last := 1
	for page := PageCount; page >= 2; page-- {
		var active bool
		if len(extra) > 0 {
			active = probe != nil && probe.IsPageActive(page)
		} else {
			active = len(raw[page-1]) > 0
		}
		if active {
			last = page
			break
		}
	}

	pages := make([][]string, last)
	for i := range pages {
		pages[i] = append([]string(nil), raw[i]...)
	}
	pages[last-1] = append(pages[last-1], extra...)
	return pages, last - 1
}
