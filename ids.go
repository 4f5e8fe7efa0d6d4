package tooltl

import (
	"regexp"
	"strings"

	"github.com/tooltl/tooltl/svgdoc"
)

var urlRefRe = regexp.MustCompile(`url\(\s*['"]?#([^)'"\s]+)['"]?\s*\)`)

// PrefixIDs renames every id of the tree to "<prefix>_<id>" and rewrites the
// url(#id) and #id references accordingly. A tree whose ids all carry the
// prefix is left alone, so that the operation can be repeated; as soon as one
// id lacks it, every id is renamed to keep them unique. It returns the number
// of renamed ids.
func PrefixIDs(root *svgdoc.Element, prefix string) int {
	prefix += "_"
	var ids []*svgdoc.Element
	prefixed := true
	root.Walk(func(el, _ *svgdoc.Element) bool {
		if id, ok := el.Lookup("id"); ok && id != "" {
			ids = append(ids, el)
			prefixed = prefixed && strings.HasPrefix(id, prefix)
		}
		return true
	})
	if prefixed {
		return 0
	}

	renamed := make(map[string]string, len(ids))
	for _, el := range ids {
		id := el.Get("id")
		renamed[id] = prefix + id
		el.Set("id", prefix+id)
	}

	rewrite := func(v string) string {
		v = urlRefRe.ReplaceAllStringFunc(v, func(ref string) string {
			id := urlRefRe.FindStringSubmatch(ref)[1]
			if nid, ok := renamed[id]; ok {
				return "url(#" + nid + ")"
			}
			return ref
		})
		if id, ok := strings.CutPrefix(v, "#"); ok {
			if nid, ok := renamed[id]; ok {
				return "#" + nid
			}
		}
		return v
	}

	root.Walk(func(el, _ *svgdoc.Element) bool {
		for i, a := range el.Attrs {
			if a.Name.Space == "" && a.Name.Local == "id" {
				continue
			}
			el.Attrs[i].Value = rewrite(a.Value)
		}
		if el.Tag() == "style" {
			for i, c := range el.Children {
				if cd, ok := c.(svgdoc.CharData); ok {
					el.Children[i] = svgdoc.CharData(urlRefRe.ReplaceAllStringFunc(string(cd), rewrite))
				}
			}
		}
		return true
	})
	return len(renamed)
}
