// ABOUTME: tea.Cmd builders for the IDE's Gateway calls
// ABOUTME: Each call runs off the Update loop and reports back with a message

package tui

import (
	"context"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/gatewaypanel"
	"golang.org/x/sync/errgroup"
)

// poolTickMsg triggers a periodic Gateway refresh
type poolTickMsg struct{}

// gatewayLoadedMsg is sent when a Gateway refresh completes
type gatewayLoadedMsg struct {
	snap gatewaypanel.Snapshot
	err  error
}

// scriptsListedMsg is sent when the script listing completes
type scriptsListedMsg struct {
	scripts []client.ScriptMetadata
	err     error
}

// scriptLoadedMsg is sent when a script load completes
type scriptLoadedMsg struct {
	name   string
	script *client.SavedScript
	err    error
}

// scriptSavedMsg is sent when a save completes
type scriptSavedMsg struct {
	req client.SaveScriptRequest
	err error
}

// scriptDeletedMsg is sent when a delete completes
type scriptDeletedMsg struct {
	name string
	err  error
}

// fileExportedMsg is sent when the buffer was written to a local file
type fileExportedMsg struct {
	path string
	err  error
}

// scheduleTick waits for the refresh interval, then asks for a refresh
func (a *App) scheduleTick() tea.Cmd {
	return tea.Tick(a.refresh, func(time.Time) tea.Msg {
		return poolTickMsg{}
	})
}

// refreshGateway creates a command to fetch the Gateway panel's data.
// A tick and ctrl+p landing together share one fetch.
func (a *App) refreshGateway() tea.Cmd {
	c := a.client
	group := &a.fetches
	return func() tea.Msg {
		v, err, _ := group.Do("snapshot", func() (interface{}, error) {
			return fetchSnapshot(context.Background(), c)
		})
		if err != nil {
			return gatewayLoadedMsg{err: err}
		}
		return gatewayLoadedMsg{snap: v.(gatewaypanel.Snapshot)}
	}
}

// fetchSnapshot queries the Gateway concurrently. Only pool stats are
// required; version and metrics are best effort.
func fetchSnapshot(ctx context.Context, c *client.Client) (gatewaypanel.Snapshot, error) {
	var snap gatewaypanel.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool, err := c.PoolStats(gctx)
		if err != nil {
			return err
		}
		snap.Pool = pool
		return nil
	})
	g.Go(func() error {
		snap.Impact = c.GatewayImpact(gctx)
		return nil
	})
	g.Go(func() error {
		if v, err := c.PythonVersion(gctx); err == nil {
			snap.Version = v
		}
		return nil
	})
	g.Go(func() error {
		raw, err := c.Diagnostics(gctx)
		if err != nil {
			return nil
		}
		if m, err := client.ParseExecutionMetrics(raw); err == nil {
			snap.Metrics = &m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return gatewaypanel.Snapshot{}, err
	}
	return snap, nil
}

func (a *App) listScripts() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		scripts, err := c.ListScripts(context.Background())
		return scriptsListedMsg{scripts: scripts, err: err}
	}
}

func (a *App) loadScript(name string) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		script, err := c.LoadScript(context.Background(), name)
		return scriptLoadedMsg{name: name, script: script, err: err}
	}
}

func (a *App) saveScript(req client.SaveScriptRequest) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		err := c.SaveScript(context.Background(), req)
		return scriptSavedMsg{req: req, err: err}
	}
}

func (a *App) deleteScript(name string) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		err := c.DeleteScript(context.Background(), name)
		return scriptDeletedMsg{name: name, err: err}
	}
}

// exportFile writes the trimmed buffer to path with a trailing newline
func exportFile(path, code string) tea.Cmd {
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(strings.TrimSpace(code)+"\n"), 0644)
		return fileExportedMsg{path: path, err: err}
	}
}
