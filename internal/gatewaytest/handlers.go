package gatewaytest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]interface{}) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(r *http.Request) map[string]interface{} {
	body, _ := r.Context().Value(bodyKey{}).(map[string]interface{})
	if body == nil {
		return map[string]interface{}{}
	}
	return body
}

func str(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

func (g *Gateway) handleExec(field string, fn func() ExecFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r)
		vars, _ := body["variables"].(map[string]interface{})

		g.mu.Lock()
		exec := fn()
		delay := g.delay
		g.mu.Unlock()

		start := time.Now()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		result, errMsg, ok := exec(str(body, field), vars)

		g.mu.Lock()
		g.metrics.total++
		if ok {
			g.metrics.ok++
		} else {
			g.metrics.failed++
		}
		g.mu.Unlock()

		resp := map[string]interface{}{
			"success":         ok,
			"executionTimeMs": time.Since(start).Milliseconds(),
			"timestamp":       time.Now().UnixMilli(),
		}
		if ok {
			resp["result"] = result
		} else {
			resp["error"] = errMsg
		}
		writeJSON(w, resp)
	}
}

func (g *Gateway) handlePoolStats(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	p := g.pool
	g.mu.Unlock()
	writeJSON(w, p)
}

func (g *Gateway) handlePoolSize(w http.ResponseWriter, r *http.Request) {
	size, ok := bodyFrom(r)["size"].(float64)
	if !ok || size < 1 || size > 20 {
		writeJSON(w, errorResponse("Pool size must be between 1 and 20"))
		return
	}

	g.mu.Lock()
	n := int(size)
	g.pool = Pool{TotalSize: n, Healthy: n, Available: n, InUse: 0}
	g.mu.Unlock()

	writeJSON(w, map[string]interface{}{"success": true, "poolSize": n})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	healthy := g.healthy
	g.mu.Unlock()
	writeJSON(w, map[string]interface{}{
		"healthy":   healthy,
		"available": healthy,
		"timestamp": time.Now().UnixMilli(),
	})
}

func (g *Gateway) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	m := g.metrics
	p := g.pool
	g.mu.Unlock()

	var avg float64
	if m.total > 0 {
		avg = 12.5
	}
	writeJSON(w, map[string]interface{}{
		"totalExecutions":      m.total,
		"successfulExecutions": m.ok,
		"failedExecutions":     m.failed,
		"averageExecutionTime": avg,
		"poolStats":            p,
	})
}

func (g *Gateway) handleVersion(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	v := g.version
	g.mu.Unlock()
	writeJSON(w, map[string]interface{}{"pythonVersion": v})
}

func (g *Gateway) handleImpact(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	impact := g.impact
	g.mu.Unlock()
	if impact == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, impact)
}

// handleCheckSyntax flags lines with unbalanced parentheses
func (g *Gateway) handleCheckSyntax(w http.ResponseWriter, r *http.Request) {
	code := str(bodyFrom(r), "code")
	errs := []map[string]interface{}{}
	for i, line := range strings.Split(code, "\n") {
		if strings.Count(line, "(") != strings.Count(line, ")") {
			errs = append(errs, map[string]interface{}{
				"line":     i + 1,
				"column":   len(line),
				"message":  "'(' was never closed",
				"severity": "error",
			})
		}
	}
	writeJSON(w, map[string]interface{}{"success": len(errs) == 0, "errors": errs})
}

// handleCompletions offers builtins matching the word before the cursor
func (g *Gateway) handleCompletions(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	code := str(body, "code")
	line, _ := body["line"].(float64)
	col, _ := body["column"].(float64)

	lines := strings.Split(code, "\n")
	prefix := ""
	if idx := int(line) - 1; idx >= 0 && idx < len(lines) {
		l := lines[idx]
		c := int(col)
		if c > len(l) {
			c = len(l)
		}
		l = l[:c]
		if i := strings.LastIndexAny(l, " \t.()[],=:"); i >= 0 {
			l = l[i+1:]
		}
		prefix = l
	}

	builtins := []string{"abs", "all", "any", "dict", "enumerate", "len", "list", "print", "range", "sorted", "str", "sum"}
	out := []map[string]interface{}{}
	for _, b := range builtins {
		if strings.HasPrefix(b, prefix) {
			out = append(out, map[string]interface{}{
				"text":      b,
				"type":      "function",
				"complete":  strings.TrimPrefix(b, prefix),
				"signature": b + "(...)",
			})
		}
	}
	writeJSON(w, map[string]interface{}{"success": true, "completions": out})
}

func (g *Gateway) handleShellExec(w http.ResponseWriter, r *http.Request) {
	cmd := strings.TrimSpace(str(bodyFrom(r), "command"))
	switch {
	case cmd == "false":
		writeJSON(w, map[string]interface{}{"success": false, "stdout": "", "stderr": "", "exitCode": 1})
	case strings.HasPrefix(cmd, "echo "):
		writeJSON(w, map[string]interface{}{"success": true, "stdout": strings.TrimPrefix(cmd, "echo ") + "\n", "stderr": "", "exitCode": 0})
	default:
		writeJSON(w, map[string]interface{}{"success": false, "stdout": "", "stderr": cmd + ": command not found", "exitCode": 127})
	}
}

func (g *Gateway) handleShellCreate(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	g.mu.Lock()
	g.sessions[id] = nil
	g.mu.Unlock()
	writeJSON(w, map[string]interface{}{"success": true, "sessionId": id})
}

func (g *Gateway) handleShellSessionExec(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	id := str(body, "sessionId")
	cmd := str(body, "command")

	g.mu.Lock()
	history, ok := g.sessions[id]
	if ok {
		g.sessions[id] = append(history, cmd)
	}
	g.mu.Unlock()

	if !ok {
		writeJSON(w, errorResponse("Session not found: "+id))
		return
	}
	out := fmt.Sprintf("$ %s\n", cmd)
	if strings.HasPrefix(cmd, "echo ") {
		out += strings.TrimPrefix(cmd, "echo ") + "\n"
	}
	writeJSON(w, map[string]interface{}{"success": true, "output": out})
}

func (g *Gateway) handleShellClose(w http.ResponseWriter, r *http.Request) {
	id := str(bodyFrom(r), "sessionId")
	g.mu.Lock()
	delete(g.sessions, id)
	g.mu.Unlock()
	writeJSON(w, map[string]interface{}{"success": true})
}

func (g *Gateway) handleListScripts(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	list := make([]Script, 0, len(g.scripts))
	for _, s := range g.scripts {
		s.Code = ""
		list = append(list, s)
	}
	g.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	out := make([]map[string]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, map[string]interface{}{
			"id":           s.ID,
			"name":         s.Name,
			"description":  s.Description,
			"author":       s.Author,
			"createdDate":  s.CreatedDate,
			"lastModified": s.LastModified,
			"folderPath":   s.FolderPath,
			"version":      s.Version,
		})
	}
	writeJSON(w, map[string]interface{}{"success": true, "scripts": out})
}

func (g *Gateway) handleLoadScript(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s, ok := g.Script(name)
	if !ok {
		writeJSON(w, errorResponse("Script not found: "+name))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "script": s})
}

func (g *Gateway) handleSaveScript(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	name := strings.TrimSpace(str(body, "name"))
	if name == "" {
		writeJSON(w, errorResponse("Script name is required"))
		return
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	g.mu.Lock()
	existing, exists := g.scripts[name]
	s := Script{
		ID:           uuid.NewString(),
		Name:         name,
		Code:         str(body, "code"),
		Description:  str(body, "description"),
		Author:       str(body, "author"),
		FolderPath:   str(body, "folderPath"),
		Version:      str(body, "version"),
		CreatedDate:  now,
		LastModified: now,
	}
	if exists {
		s.ID = existing.ID
		s.CreatedDate = existing.CreatedDate
	}
	g.scripts[name] = s
	g.mu.Unlock()

	writeJSON(w, map[string]interface{}{"success": true, "script": s})
}

func (g *Gateway) handleDeleteScript(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	g.mu.Lock()
	_, ok := g.scripts[name]
	delete(g.scripts, name)
	g.mu.Unlock()

	if !ok {
		writeJSON(w, errorResponse("Script not found: "+name))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}
