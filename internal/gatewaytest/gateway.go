// ABOUTME: In-memory fake of the Gateway's Python 3 REST API for tests
// ABOUTME: Serves every endpoint the client uses from an httptest server

package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

const DefaultBasePath = "/data/python3integration/api/v1"

// ExecFunc produces the response for /exec or /eval.
// Return ok=false to report a Python failure with errMsg.
type ExecFunc func(source string, variables map[string]interface{}) (result string, errMsg string, ok bool)

// Script is a script as stored by the fake
type Script struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	CreatedDate  string `json:"createdDate"`
	LastModified string `json:"lastModified"`
	FolderPath   string `json:"folderPath"`
	Version      string `json:"version"`
}

// Pool is the fake process pool reported by /pool-stats
type Pool struct {
	TotalSize int `json:"totalSize"`
	Healthy   int `json:"healthy"`
	Available int `json:"available"`
	InUse     int `json:"inUse"`
}

// Request records one request the fake received
type Request struct {
	Method    string
	Path      string
	RequestID string
	Body      map[string]interface{}
}

type override struct {
	status int
	body   string
}

// Gateway is a running fake. All setters are safe to call while requests are served.
type Gateway struct {
	server   *httptest.Server
	basePath string

	mu        sync.Mutex
	healthy   bool
	pool      Pool
	impact    map[string]interface{}
	version   string
	scripts   map[string]Script
	sessions  map[string][]string
	exec      ExecFunc
	eval      ExecFunc
	delay     time.Duration
	overrides map[string]override
	requests  []Request
	metrics   struct{ total, ok, failed int64 }
}

// New starts a fake Gateway and stops it when the test ends
func New(t testing.TB) *Gateway {
	t.Helper()
	g := &Gateway{
		basePath:  DefaultBasePath,
		healthy:   true,
		pool:      Pool{TotalSize: 3, Healthy: 3, Available: 3, InUse: 0},
		version:   "3.11.9",
		scripts:   make(map[string]Script),
		sessions:  make(map[string][]string),
		overrides: make(map[string]override),
		exec:      echoExec,
		eval:      echoExec,
	}
	g.server = httptest.NewServer(g.routes())
	t.Cleanup(g.server.Close)
	return g
}

// URL returns the Gateway root URL (without the API base path)
func (g *Gateway) URL() string {
	return g.server.URL
}

// echoExec succeeds with the value of a "result" variable when given, else "None".
// Source starting with "raise" fails.
func echoExec(source string, variables map[string]interface{}) (string, string, bool) {
	if strings.HasPrefix(strings.TrimSpace(source), "raise") {
		return "", "Traceback (most recent call last):\n" + strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(source), "raise")), false
	}
	if v, ok := variables["result"]; ok {
		return fmt.Sprint(v), "", true
	}
	return "None", "", true
}

func (g *Gateway) SetHealthy(healthy bool) {
	g.mu.Lock()
	g.healthy = healthy
	g.mu.Unlock()
}

func (g *Gateway) SetPool(p Pool) {
	g.mu.Lock()
	g.pool = p
	g.mu.Unlock()
}

func (g *Gateway) SetVersion(v string) {
	g.mu.Lock()
	g.version = v
	g.mu.Unlock()
}

// SetExec replaces the /exec behavior
func (g *Gateway) SetExec(fn ExecFunc) {
	g.mu.Lock()
	g.exec = fn
	g.mu.Unlock()
}

// SetEval replaces the /eval behavior
func (g *Gateway) SetEval(fn ExecFunc) {
	g.mu.Lock()
	g.eval = fn
	g.mu.Unlock()
}

// SetDelay makes /exec and /eval wait before answering
func (g *Gateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	g.delay = d
	g.mu.Unlock()
}

// SetImpact sets the /gateway-impact body; nil makes the endpoint 404
func (g *Gateway) SetImpact(impact map[string]interface{}) {
	g.mu.Lock()
	g.impact = impact
	g.mu.Unlock()
}

// Override forces an endpoint (path relative to the base path, e.g. "/exec")
// to answer with a fixed status and raw body until ClearOverrides.
func (g *Gateway) Override(endpoint string, status int, body string) {
	g.mu.Lock()
	g.overrides[endpoint] = override{status: status, body: body}
	g.mu.Unlock()
}

func (g *Gateway) ClearOverrides() {
	g.mu.Lock()
	g.overrides = make(map[string]override)
	g.mu.Unlock()
}

// PutScript stores a script directly, bypassing the API
func (g *Gateway) PutScript(s Script) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	g.scripts[s.Name] = s
}

// Script returns a stored script
func (g *Gateway) Script(name string) (Script, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.scripts[name]
	return s, ok
}

// Requests returns a copy of every request received so far
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

// Sessions returns the IDs of open interactive shell sessions
func (g *Gateway) Sessions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.sessions))
	for id := range g.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Gateway) routes() http.Handler {
	mux := http.NewServeMux()
	p := g.basePath

	mux.HandleFunc("POST "+p+"/exec", g.handleExec("code", func() ExecFunc { return g.exec }))
	mux.HandleFunc("POST "+p+"/eval", g.handleExec("expression", func() ExecFunc { return g.eval }))
	mux.HandleFunc("GET "+p+"/pool-stats", g.handlePoolStats)
	mux.HandleFunc("POST "+p+"/pool-size", g.handlePoolSize)
	mux.HandleFunc("GET "+p+"/health", g.handleHealth)
	mux.HandleFunc("GET "+p+"/diagnostics", g.handleDiagnostics)
	mux.HandleFunc("GET "+p+"/version", g.handleVersion)
	mux.HandleFunc("GET "+p+"/gateway-impact", g.handleImpact)
	mux.HandleFunc("POST "+p+"/check-syntax", g.handleCheckSyntax)
	mux.HandleFunc("POST "+p+"/completions", g.handleCompletions)
	mux.HandleFunc("POST "+p+"/shell-exec", g.handleShellExec)
	mux.HandleFunc("POST "+p+"/shell-interactive/create", g.handleShellCreate)
	mux.HandleFunc("POST "+p+"/shell-interactive/exec", g.handleShellSessionExec)
	mux.HandleFunc("POST "+p+"/shell-interactive/close", g.handleShellClose)
	mux.HandleFunc("GET "+p+"/scripts/list", g.handleListScripts)
	mux.HandleFunc("GET "+p+"/scripts/load/{name}", g.handleLoadScript)
	mux.HandleFunc("POST "+p+"/scripts/save", g.handleSaveScript)
	mux.HandleFunc("DELETE "+p+"/scripts/delete/{name}", g.handleDeleteScript)

	return g.record(mux)
}

// record logs the request and applies any override before routing
func (g *Gateway) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if r.Body != nil && r.ContentLength != 0 {
			json.NewDecoder(r.Body).Decode(&body)
		}
		endpoint := strings.TrimPrefix(r.URL.Path, g.basePath)

		g.mu.Lock()
		g.requests = append(g.requests, Request{
			Method:    r.Method,
			Path:      endpoint,
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      body,
		})
		ov, forced := g.overrides[endpoint]
		g.mu.Unlock()

		if forced {
			w.WriteHeader(ov.status)
			w.Write([]byte(ov.body))
			return
		}

		r = r.WithContext(withBody(r.Context(), body))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}
