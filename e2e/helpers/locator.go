package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// refKind selects the lookup strategy of a Ref.
type refKind int

const (
	kindCSS refKind = iota
	kindLabel
	kindRole
)

// resolvePollInterval is the delay between lookups while waiting for an
// element to appear.
const resolvePollInterval = 100 * time.Millisecond

// Ref is a semantic element reference. It is only a description: it is
// resolved against the live page every time an action runs, so it stays
// valid across navigations.
type Ref struct {
	kind  refKind
	query string
	name  string
	exact bool
}

// CSS references elements matching a CSS selector.
func CSS(selector string) Ref {
	return Ref{kind: kindCSS, query: selector, exact: true}
}

// ID references the element with the given id attribute.
func ID(id string) Ref {
	return Ref{kind: kindCSS, query: "#" + id, exact: true}
}

// Label references form controls whose label starts with text,
// case-insensitively. Labels come from <label for>, wrapping <label>,
// aria-label and aria-labelledby.
func Label(text string) Ref {
	return Ref{kind: kindLabel, query: text}
}

// ExactLabel is Label with whitespace-normalized, case-sensitive equality.
func ExactLabel(text string) Ref {
	return Ref{kind: kindLabel, query: text, exact: true}
}

// Role references elements by ARIA role and accessible name prefix
// (case-insensitive). An empty name matches every element of the role.
func Role(role, name string) Ref {
	return Ref{kind: kindRole, query: role, name: name}
}

// ExactRole is Role with exact accessible name matching.
func ExactRole(role, name string) Ref {
	return Ref{kind: kindRole, query: role, name: name, exact: true}
}

func (r Ref) String() string {
	switch r.kind {
	case kindLabel:
		if r.exact {
			return fmt.Sprintf("label=%q", r.query)
		}
		return fmt.Sprintf("label^=%q", r.query)
	case kindRole:
		if r.exact {
			return fmt.Sprintf("role=%s[name=%q]", r.query, r.name)
		}
		return fmt.Sprintf("role=%s[name^=%q]", r.query, r.name)
	default:
		return fmt.Sprintf("css=%s", r.query)
	}
}

// lookup runs a single lookup without waiting.
func (r Ref) lookup(pg *rod.Page) (rod.Elements, error) {
	switch r.kind {
	case kindLabel:
		return pg.ElementsByJS(rod.Eval(byLabelJS, r.query, r.exact))
	case kindRole:
		return pg.ElementsByJS(rod.Eval(byRoleJS, r.query, r.name, r.exact))
	default:
		return pg.Elements(r.query)
	}
}

// resolveAll polls until at least one element matches or ctx ends.
func resolveAll(ctx context.Context, pg *rod.Page, ref Ref, window time.Duration) (rod.Elements, error) {
	ticker := time.NewTicker(resolvePollInterval)
	defer ticker.Stop()

	for {
		els, err := ref.lookup(pg.Context(ctx))
		if err == nil && len(els) > 0 {
			return els, nil
		}
		select {
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
			return nil, &NotFoundError{Ref: ref, Timeout: window, Err: err}
		case <-ticker.C:
		}
	}
}

// resolveOne is resolveAll with strict single-match semantics.
func resolveOne(ctx context.Context, pg *rod.Page, ref Ref, window time.Duration) (*rod.Element, error) {
	els, err := resolveAll(ctx, pg, ref, window)
	if err != nil {
		return nil, err
	}
	if len(els) > 1 {
		return nil, &AmbiguousMatchError{Ref: ref, Count: len(els)}
	}
	return els[0], nil
}

const textMatchJS = `
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const matches = (candidate, want, exact) => {
		const got = norm(candidate);
		want = norm(want);
		return exact ? got === want : got.toLowerCase().startsWith(want.toLowerCase());
	};
	const labelledBy = (el) => (el.getAttribute('aria-labelledby') || '')
		.split(/\s+/)
		.map((id) => document.getElementById(id))
		.filter(Boolean)
		.map((n) => n.textContent)
		.join(' ');
`

const byLabelJS = `(text, exact) => {` + textMatchJS + `
	const found = new Set();
	for (const label of document.querySelectorAll('label')) {
		if (label.control && matches(label.textContent, text, exact)) {
			found.add(label.control);
		}
	}
	for (const el of document.querySelectorAll('[aria-label]')) {
		if (matches(el.getAttribute('aria-label'), text, exact)) {
			found.add(el);
		}
	}
	for (const el of document.querySelectorAll('[aria-labelledby]')) {
		if (matches(labelledBy(el), text, exact)) {
			found.add(el);
		}
	}
	return Array.from(found);
}`

const byRoleJS = `(role, name, exact) => {` + textMatchJS + `
	const implicitRole = (el) => {
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute('type') || '').toLowerCase();
		switch (tag) {
		case 'button':
			return 'button';
		case 'a':
			return el.hasAttribute('href') ? 'link' : '';
		case 'select':
			return el.multiple || el.size > 1 ? 'listbox' : 'combobox';
		case 'textarea':
			return 'textbox';
		case 'h1': case 'h2': case 'h3': case 'h4': case 'h5': case 'h6':
			return 'heading';
		case 'input':
			if (['button', 'submit', 'reset', 'image'].includes(type)) return 'button';
			if (type === 'checkbox') return 'checkbox';
			if (type === 'radio') return 'radio';
			if (type === 'range') return 'slider';
			if (['', 'text', 'email', 'tel', 'url', 'search'].includes(type)) return 'textbox';
			return '';
		}
		return '';
	};
	const accessibleName = (el) => {
		if (el.hasAttribute('aria-labelledby')) return labelledBy(el);
		if (el.hasAttribute('aria-label')) return el.getAttribute('aria-label');
		if (el.labels && el.labels.length) return Array.from(el.labels).map((l) => l.textContent).join(' ');
		if (el.tagName === 'INPUT') return el.value || el.getAttribute('title') || '';
		return el.innerText || el.textContent || el.getAttribute('title') || '';
	};
	const hidden = (el) => el.closest('[aria-hidden="true"]') !== null ||
		!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);

	const out = [];
	for (const el of document.querySelectorAll('*')) {
		if ((el.getAttribute('role') || implicitRole(el)) !== role) continue;
		if (hidden(el)) continue;
		if (name !== '' && !matches(accessibleName(el), name, exact)) continue;
		out.push(el);
	}
	return out;
}`
