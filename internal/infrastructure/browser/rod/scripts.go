package rod

// registryVar holds the page's element handles. An element keeps its
// handle across snapshots and handles are never reused, so a handle held
// by a running press names the same element or none. Each document starts
// numbering at a random offset, so handles from a previous document miss.
const registryVar = "window.__behatLocatorHandles"

const registryJS = `(` + registryVar + ` = ` + registryVar + ` || {
		next: 1 + Math.floor(Math.random() * 2 ** 40),
		ids: new WeakMap(),
		els: new Map(),
	})`

const snapshotJS = `() => {
	const reg = ` + registryJS + `;
	for (const [h, el] of reg.els) {
		if (!el.isConnected) reg.els.delete(h);
	}
	const handleOf = (node) => {
		let h = reg.ids.get(node);
		if (h === undefined) {
			h = reg.next++;
			reg.ids.set(node, h);
		}
		reg.els.set(h, node);
		return h;
	};
	const visit = (node) => {
		if (node.nodeType === Node.TEXT_NODE) {
			return { t: 3, v: node.textContent };
		}
		if (node.nodeType !== Node.ELEMENT_NODE) {
			return null;
		}
		const style = getComputedStyle(node);
		const out = {
			t: 1,
			h: handleOf(node),
			n: node.localName,
			a: Array.from(node.attributes).map((a) => [a.name, a.value]),
			d: style.display,
			z: style.zIndex,
		};
		if (node.id && typeof node.innerText === 'string') {
			out.i = node.innerText;
		}
		const children = [];
		for (const child of node.childNodes) {
			const c = visit(child);
			if (c) children.push(c);
		}
		if (children.length) out.c = children;
		if (node.shadowRoot) {
			out.r = true;
			const shadow = [];
			for (const child of node.shadowRoot.childNodes) {
				const c = visit(child);
				if (c) shadow.push(c);
			}
			if (shadow.length) out.s = shadow;
		}
		return out;
	};
	const root = visit(document.documentElement);
	return JSON.stringify(root);
}`

const lookupJS = `const el = ` + registryVar + ` && ` + registryVar + `.els.get(h);
	if (!el || !el.isConnected) throw new Error('element ' + h + ' is gone, capture the page again');`

const rectJS = `(h) => {
	` + lookupJS + `
	const r = el.getBoundingClientRect();
	return JSON.stringify({ x: r.left, y: r.top, width: r.width, height: r.height });
}`

const scrollJS = `(h) => {
	` + lookupJS + `
	el.scrollIntoView(false);
}`

const frameJS = `() => new Promise((resolve) => requestAnimationFrame(() => resolve()))`

const mouseJS = `(h, type, x, y) => {
	` + lookupJS + `
	el.dispatchEvent(new MouseEvent(type, {
		clientX: x,
		clientY: y,
		bubbles: true,
		cancelable: true,
		view: window,
	}));
}`

const clickJS = `(h) => {
	` + lookupJS + `
	el.click();
}`
