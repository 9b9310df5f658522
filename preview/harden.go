// Package preview prepares generated artifacts for an embedded viewer.
package preview

import "strings"

// hardenStyle de-emphasises dead links and disabled controls.
const hardenStyle = `<style data-llamable="harden">
a[href="#"], a[href=""], a:not([href]), a[href^="javascript:" i], a[aria-disabled="true"] { pointer-events: none !important; opacity: 0.6; cursor: not-allowed; }
button[disabled], button[aria-disabled="true"], .disabled { pointer-events: none !important; opacity: 0.6; cursor: not-allowed; }
</style>`

// hardenScript intercepts navigation inside the preview. Document.ResolveClick
// implements the same decision table in Go; keep them in sync.
const hardenScript = `<script data-llamable="harden">
(function () {
  function scrollToTop() { window.scrollTo({ top: 0, behavior: 'smooth' }); }
  function pulse(el) {
    var prev = el.style.transform;
    el.style.transition = 'transform 120ms ease';
    el.style.transform = 'scale(0.95)';
    setTimeout(function () { el.style.transform = prev || 'scale(1)'; }, 120);
  }
  document.addEventListener('click', function (e) {
    var target = e.target;
    var el = target && target.closest ? target.closest('a, button') : null;
    if (!el) return;
    if (el.tagName === 'BUTTON') {
      if (!el.getAttribute('onclick')) pulse(el);
      return;
    }
    var href = (el.getAttribute('href') || '').trim();
    var lower = href.toLowerCase();
    if (!href || href === '#' || lower.indexOf('javascript:') === 0 || el.getAttribute('aria-disabled') === 'true') {
      e.preventDefault();
      e.stopPropagation();
      return;
    }
    if (href.charAt(0) === '#') {
      e.preventDefault();
      var id = href.slice(1);
      try { id = decodeURIComponent(id); } catch (err) {}
      var section = document.getElementById(id);
      if (section) section.scrollIntoView({ behavior: 'smooth', block: 'start' });
      return;
    }
    if (lower.indexOf('http') === 0 || lower.indexOf('mailto:') === 0 || lower.indexOf('tel:') === 0) {
      e.preventDefault();
      window.open(href, '_blank', 'noopener,noreferrer');
      return;
    }
    e.preventDefault();
    scrollToTop();
  }, true);
  document.addEventListener('submit', function (e) {
    e.preventDefault();
  }, true);
})();
</script>`

// Harden injects the style rules before </head> (or prepends them) and the
// behaviour script before </body> (or appends it). Applying it twice injects
// twice.
func Harden(doc string) string {
	lower := asciiLower(doc)

	var out strings.Builder
	out.Grow(len(doc) + len(hardenStyle) + len(hardenScript) + 2)

	head := strings.Index(lower, "</head>")
	body := strings.LastIndex(lower, "</body>")
	if body >= 0 && head >= 0 && body < head {
		body = -1
	}

	if head < 0 {
		out.WriteString(hardenStyle)
		out.WriteString("\n")
	}
	last := 0
	if head >= 0 {
		out.WriteString(doc[:head])
		out.WriteString(hardenStyle)
		out.WriteString("\n")
		last = head
	}
	if body >= 0 {
		out.WriteString(doc[last:body])
		out.WriteString(hardenScript)
		out.WriteString("\n")
		out.WriteString(doc[body:])
		return out.String()
	}
	out.WriteString(doc[last:])
	out.WriteString("\n")
	out.WriteString(hardenScript)
	return out.String()
}

// asciiLower lowercases A-Z only so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
