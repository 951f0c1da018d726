package web

import "github.com/gofiber/fiber/v2"

// handleIndex serves the single-page dashboard.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>Blockbot Dashboard</title>
<style>
  body { font-family: monospace; background: #111; color: #eee; margin: 20px; }
  h1 { font-size: 18px; }
  .row { display: flex; gap: 20px; }
  .panel { background: #1c1c1c; border: 1px solid #333; padding: 12px; border-radius: 6px; }
  #frame { width: 640px; height: 480px; background: #000; }
  #logs { width: 480px; height: 420px; overflow-y: scroll; font-size: 12px; }
  #status span { color: #6f6; }
  button { background: #333; color: #eee; border: 1px solid #555; padding: 6px 14px;
           margin-right: 8px; cursor: pointer; border-radius: 4px; }
  button:hover { background: #444; }
  .warn { color: #fc6; }
  .error { color: #f66; }
</style>
</head>
<body>
<h1>Blockbot Dashboard</h1>
<div id="status" class="panel">connecting...</div>
<p>
  <button onclick="signal('continue')">Continue (C)</button>
  <button onclick="signal('reset')">Reset (R)</button>
  <button onclick="signal('quit')">Quit (Q)</button>
</p>
<div class="row">
  <div class="panel"><img id="frame" src="/api/frame"></div>
  <div class="panel"><div id="logs"></div></div>
</div>
<script>
function signal(name) { fetch('/api/signal/' + name, {method: 'POST'}); }

function renderStatus(st) {
  document.getElementById('status').innerHTML =
    'STATE: <span>' + st.state + '</span>' +
    (st.held_color ? ' | HELD: <span>' + st.held_color + '</span>' : '') +
    ' | COMPLETED: <span>' + st.blocks_completed + '</span>' +
    ' | ATTEMPTS: <span>' + st.search_attempts + '</span>' +
    (st.stalled ? ' | <span class="warn">STALLED: ' + st.stall_reason + '</span>' : '') +
    (st.last_error ? ' | <span class="error">' + st.last_error + '</span>' : '');
}

var statusWS = new WebSocket('ws://' + location.host + '/ws/status');
statusWS.onmessage = function(e) { renderStatus(JSON.parse(e.data)); };

var logsWS = new WebSocket('ws://' + location.host + '/ws/logs');
logsWS.onmessage = function(e) {
  var entry = JSON.parse(e.data);
  var div = document.getElementById('logs');
  var line = document.createElement('div');
  line.className = entry.type;
  line.textContent = entry.time + ' ' + entry.message;
  div.appendChild(line);
  div.scrollTop = div.scrollHeight;
};

var frameWS = new WebSocket('ws://' + location.host + '/ws/camera');
frameWS.binaryType = 'blob';
frameWS.onmessage = function(e) {
  document.getElementById('frame').src = URL.createObjectURL(e.data);
};

// Fallback status poll in case the websocket drops
setInterval(function() {
  fetch('/api/status').then(function(r) { return r.json(); }).then(renderStatus);
}, 3000);
</script>
</body>
</html>`
