// Package httpface implements the peripheral HTTP front-end spec.md §6
// allows: a terminal-like page that renders replies from
// executor.Server.ExecuteTokens, which runs commands through the same
// executor.Server.Execute dispatch the TCP session uses, routed
// with github.com/gorilla/mux the way ClusterCockpit-cc-backend wires its
// REST surface (router := mux.NewRouter(); router.HandleFunc(path, fn)).
package httpface

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/go-resp/kvserver/internal/executor"
	"github.com/go-resp/kvserver/internal/resp"
)

// Front wraps an executor.Server with an HTTP router.
type Front struct {
	server *executor.Server
	router *mux.Router
}

// New builds a Front serving the terminal page at "/" and a JSON command
// endpoint at "/exec".
func New(server *executor.Server) *Front {
	f := &Front{server: server, router: mux.NewRouter()}
	f.router.HandleFunc("/", f.handleIndex).Methods(http.MethodGet)
	f.router.HandleFunc("/exec", f.handleExec).Methods(http.MethodPost)
	return f
}

// ServeHTTP lets Front be passed directly to http.Server.Handler.
func (f *Front) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.router.ServeHTTP(w, r)
}

func (f *Front) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexPage.Execute(w, nil)
}

type execRequest struct {
	Command string `json:"command"`
}

type execResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

func (f *Front) handleExec(w http.ResponseWriter, r *http.Request) {
	var req execRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	tokens := strings.Fields(req.Command)
	if len(tokens) == 0 {
		writeJSON(w, execResponse{Error: "empty command"})
		return
	}

	frame, err := f.server.ExecuteTokens(tokens)
	if err != nil {
		writeJSON(w, execResponse{Error: err.Error()})
		return
	}
	writeJSON(w, execResponse{Reply: Render(frame)})
}

func writeJSON(w http.ResponseWriter, v execResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Render is the human-readable reply formatter spec.md §6 asks the core to
// expose to the HTTP front-end. It uses resp.Frame.String: errors and
// integers get redis-cli style "(error)"/"(integer)" prefixes, nils read
// "(nil)", and an array renders only its element count, not its elements.
func Render(f resp.Frame) string {
	return f.String()
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>kvserver console</title></head>
<body>
<h1>kvserver console</h1>
<form id="f"><input id="cmd" autofocus placeholder="GET key"><button type="submit">Run</button></form>
<pre id="out"></pre>
<script>
document.getElementById('f').addEventListener('submit', async function(e) {
  e.preventDefault();
  const cmd = document.getElementById('cmd').value;
  const res = await fetch('/exec', {method: 'POST', body: JSON.stringify({command: cmd})});
  const data = await res.json();
  document.getElementById('out').textContent += '> ' + cmd + '\n' + (data.error || data.reply) + '\n';
  document.getElementById('cmd').value = '';
});
</script>
</body>
</html>`))
