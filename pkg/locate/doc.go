/*
Package locate finds where a patch should land inside raw document text.

Two policies are provided:

  - AnchorLocator: context-window matching. The first occurrence of an anchor
    marker selects a neighbourhood; the nearest placeholder token within
    Window characters after it (or, failing that, before it) is the match. The
    scan stops at Boundary, the delimiter closing the enclosing element.

  - CandidateLocator: exact anchors tried in order; the first one present wins.

Neither policy keeps state. Idempotency comes from the caller mutating the text
between calls: a replaced placeholder can no longer be found.

	loc := locate.NewAnchorLocator(500, "</a>")
	span, err := loc.Locate(html, "Provider-X", `href="#"`)
	if errors.Is(err, locate.ErrNotFound) {
		// already patched, or never there
	}
	html = html[:span.Start] + `href="https://ex.com/x"` + html[span.End:]
*/
package locate
