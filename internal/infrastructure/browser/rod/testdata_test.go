package rod

// Pages served to the browser in tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	ShadowHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="host"></div>
	<p id="hidden" style="display:none">Hidden text</p>
	<script>
		const root = document.getElementById('host').attachShadow({ mode: 'open' });
		root.innerHTML = '<button class="inner" aria-label="Shadow action">Shadow text</button>';
	</script>
</body>
</html>`

	ClickHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Press me</button>
	<div id="log"></div>
	<script>
		const log = document.getElementById('log');
		const btn = document.getElementById('btn');
		['mousedown', 'mouseup', 'click'].forEach((type) => {
			btn.addEventListener(type, () => { log.textContent += type + ' '; });
		});
	</script>
</body>
</html>`

	OverlayHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="list">
		<button id="first">First</button>
		<button id="second">Second</button>
	</div>
	<div id="log"></div>
	<script>
		const log = document.getElementById('log');
		document.getElementById('list').addEventListener('click', (e) => { log.textContent = e.target.id; });
	</script>
</body>
</html>`
)
