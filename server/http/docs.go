package http

const docsHTML = `<!DOCTYPE html>
<html>
<head><title>Digital Wellness Assistant API</title></head>
<body>
<h1>Digital Wellness Assistant API</h1>
<p>Multi-agent wellness guidance system.</p>
<h2>Endpoints</h2>
<ul>
  <li><code>GET /health</code> — liveness probe</li>
  <li><code>POST /wellness/query</code> — body <code>{"user_id": "...", "query": "..."}</code>,
      optional <code>"intent"</code> and <code>"user_profile"</code></li>
  <li><code>GET /wellness/intents</code> — supported intent labels</li>
  <li><code>GET /wellness/memory/{user_id}</code> — conversation memory stats</li>
  <li><code>DELETE /wellness/memory/{user_id}</code> — clear conversation history</li>
  <li><code>GET /metrics</code> — Prometheus metrics</li>
</ul>
<h2>Example</h2>
<pre>
curl -X POST http://localhost:8080/wellness/query \
  -H 'Content-Type: application/json' \
  -d '{"user_id":"test","query":"I feel tired"}'
</pre>
<p>All guidance is educational, not medical advice.</p>
</body>
</html>
`
