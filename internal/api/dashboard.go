package api

import "net/http"

// dashboardHTML is the landing page: the chart in an auto-reloading iframe
// with the zoom controls alongside.
const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>polarscan</title>
<style>
  body { font-family: sans-serif; margin: 1em; background: #111; color: #ddd; }
  button { margin-right: 0.5em; padding: 0.4em 1em; }
  iframe { border: 1px solid #444; background: #fff; }
  #range { margin-left: 1em; }
</style>
</head>
<body>
<h1>polarscan</h1>
<div>
  <button onclick="zoom('in')">Zoom In</button>
  <button onclick="zoom('out')">Zoom Out</button>
  <button onclick="zoom('reset')">Reset</button>
  <a href="/api/export.csv">Export CSV</a>
  <a href="/api/snapshot.png">Snapshot PNG</a>
  <span id="range"></span>
</div>
<iframe id="chart" src="/chart" width="940" height="960"></iframe>
<script>
  function zoom(dir) {
    fetch('/api/zoom/' + dir, {method: 'POST'})
      .then(function(r) { return r.json(); })
      .then(function(v) {
        document.getElementById('range').textContent = 'range: ' + v.range_mm + ' mm';
        reload();
      });
  }
  function reload() {
    document.getElementById('chart').src = '/chart?t=' + Date.now();
  }
  setInterval(reload, 1000);
</script>
</body>
</html>
`

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}
