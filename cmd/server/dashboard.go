package main

import (
	"net/http"
)

func dashboardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Floodgate Dashboard</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #0f2027 0%, #2c5364 100%);
            min-height: 100vh;
            padding: 20px;
        }
        .container { max-width: 1000px; margin: 0 auto; }
        .header { text-align: center; color: white; margin-bottom: 30px; }
        .header h1 { font-size: 2.5em; margin-bottom: 10px; }
        .header p { opacity: 0.9; font-size: 1.1em; }
        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .stat-card {
            background: white;
            border-radius: 12px;
            padding: 25px;
            box-shadow: 0 4px 6px rgba(0,0,0,0.1);
        }
        .stat-label {
            color: #666;
            font-size: 0.9em;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 10px;
        }
        .stat-value { font-size: 2.2em; font-weight: bold; color: #333; }
        .stat-value.success { color: #10b981; }
        .stat-value.danger { color: #ef4444; }
        .stat-value.info { color: #3b82f6; }
        .bucket-bar {
            background: #e5e7eb;
            border-radius: 8px;
            height: 24px;
            overflow: hidden;
            margin-top: 12px;
        }
        .bucket-fill {
            background: #3b82f6;
            height: 100%;
            width: 0%;
            transition: width 0.5s ease;
        }
        .footer { text-align: center; color: white; opacity: 0.7; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Floodgate</h1>
            <p>Token bucket admission control</p>
        </div>
        <div class="stats-grid">
            <div class="stat-card">
                <div class="stat-label">Tokens Available</div>
                <div class="stat-value info" id="tokens">-</div>
                <div class="bucket-bar"><div class="bucket-fill" id="bucket-fill"></div></div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Capacity</div>
                <div class="stat-value" id="capacity">-</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Refill Rate (tokens/sec)</div>
                <div class="stat-value" id="refill-rate">-</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Total Checks</div>
                <div class="stat-value" id="total">0</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Admitted</div>
                <div class="stat-value success" id="allowed">0</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Denied</div>
                <div class="stat-value danger" id="denied">0</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Config Updates</div>
                <div class="stat-value" id="updates">0</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Uptime (sec)</div>
                <div class="stat-value" id="uptime">0</div>
            </div>
        </div>
        <div class="footer" id="status">connecting...</div>
    </div>
    <script>
        function render(data) {
            document.getElementById('tokens').textContent = data.bucket.tokens.toFixed(2);
            document.getElementById('capacity').textContent = data.bucket.capacity;
            document.getElementById('refill-rate').textContent = data.bucket.refill_rate;
            document.getElementById('total').textContent = data.total_checks;
            document.getElementById('allowed').textContent = data.allowed;
            document.getElementById('denied').textContent = data.denied;
            document.getElementById('updates').textContent = data.config_updates;
            document.getElementById('uptime').textContent = data.uptime_seconds;
            var pct = data.bucket.capacity > 0 ? (100 * data.bucket.tokens / data.bucket.capacity) : 0;
            document.getElementById('bucket-fill').style.width = pct + '%';
        }

        function poll() {
            fetch('/metrics').then(function(r) { return r.json(); }).then(render);
        }

        // Live updates over the metrics stream, with polling as fallback.
        // A failed connection fires both onerror and onclose; only the first
        // may start the polling loop.
        var fellBack = false;
        function fallback() {
            if (fellBack) { return; }
            fellBack = true;
            document.getElementById('status').textContent = 'polling';
            poll();
            setInterval(poll, 2000);
        }
        var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        var ws = new WebSocket(proto + location.host + '/metrics/stream');
        ws.onopen = function() { document.getElementById('status').textContent = 'live'; };
        ws.onmessage = function(ev) { render(JSON.parse(ev.data)); };
        ws.onerror = fallback;
        ws.onclose = fallback;
    </script>
</body>
</html>
`
