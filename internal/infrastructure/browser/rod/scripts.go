package rod

// Page-side readers. Each is a function expression for page.Eval and returns
// a JSON-serialisable value shaped like the matching entity type.
const (
	viewportJS = `() => {
	const doc = document.documentElement;
	const body = document.body;
	return {
		innerWidth: window.innerWidth || 0,
		innerHeight: window.innerHeight || 0,
		documentClientWidth: doc ? doc.clientWidth : 0,
		documentClientHeight: doc ? doc.clientHeight : 0,
		bodyClientWidth: body ? body.clientWidth : 0,
		bodyClientHeight: body ? body.clientHeight : 0,
	};
}`

	scrollJS = `() => {
	const body = document.body;
	const root = document.documentElement || (body && body.parentNode) || body;
	const out = {root: {x: root ? root.scrollLeft : 0, y: root ? root.scrollTop : 0}};
	if (window.pageXOffset !== undefined) {
		out.pageXOffset = window.pageXOffset;
	}
	if (window.pageYOffset !== undefined) {
		out.pageYOffset = window.pageYOffset;
	}
	return out;
}`

	elementsJS = `(tag) => Array.from(document.getElementsByTagName(tag)).map((el) => {
	const attrs = {};
	for (const a of Array.from(el.attributes)) {
		attrs[a.name.toLowerCase()] = a.value;
	}
	const out = {
		tag: el.tagName.toLowerCase(),
		attrs: attrs,
		offsetWidth: el.offsetWidth || 0,
		offsetHeight: el.offsetHeight || 0,
	};
	if (el.getBoundingClientRect) {
		const r = el.getBoundingClientRect();
		out.rect = {top: r.top, left: r.left, width: r.width, height: r.height};
	}
	return out;
})`
)
