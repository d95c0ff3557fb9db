// ABOUTME: Gateway panel showing pool stats, impact, metrics and execution times
// ABOUTME: Renders the IDE's right-hand pane and the compact status-bar summary

package gatewaypanel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/widgets"
)

// historySize is how many execution times the sparkline keeps
const historySize = 30

// Snapshot is one refresh of the Gateway's state. Only Pool is required;
// the rest is best effort.
type Snapshot struct {
	Pool    *client.PoolStats
	Impact  client.GatewayImpact
	Metrics *client.ExecutionMetrics
	Version string
}

// Panel displays Gateway state next to the editor
type Panel struct {
	snap    *Snapshot
	times   *widgets.History
	width   int
	height  int
	updated time.Time
}

// New creates an empty panel
func New(width, height int) *Panel {
	return &Panel{
		times:  widgets.NewHistory(historySize),
		width:  width,
		height: height,
	}
}

// Update replaces the Gateway snapshot
func (p *Panel) Update(snap Snapshot) {
	p.snap = &snap
	p.updated = time.Now()
}

// Snapshot returns the last snapshot, or nil before the first refresh
func (p *Panel) Snapshot() *Snapshot {
	return p.snap
}

// LastUpdate returns when the snapshot was last replaced
func (p *Panel) LastUpdate() time.Time {
	return p.updated
}

// AddExecution records one execution time for the sparkline
func (p *Panel) AddExecution(d time.Duration) {
	p.times.Add(float64(d.Milliseconds()))
}

// ExecutionTimes returns the recorded execution times in milliseconds, oldest first
func (p *Panel) ExecutionTimes() []float64 {
	return p.times.Values()
}

// SetSize updates the panel dimensions
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel
func (p *Panel) View() string {
	if p.snap == nil || p.snap.Pool == nil {
		return lipgloss.NewStyle().
			Width(p.width).
			Height(p.height).
			Render(styles.Subtitle.Render("Loading Gateway state..."))
	}

	cfg := widgets.DefaultMetricBlockConfig()
	cfg.Width = p.width

	pool := *p.snap.Pool
	blocks := []string{
		widgets.MetricBlockWithBar(icons.Pool, "Process Pool", pool.Utilization(),
			fmt.Sprintf("%d/%d in use, %d healthy", pool.InUse, pool.TotalSize, pool.Healthy), cfg),
		p.impactBlock(cfg),
		widgets.MetricBlockWithSparkline(icons.Chart, "Execution Time", p.lastTime(), p.times.Values(),
			p.metricsSummary(), cfg),
	}

	version := p.snap.Version
	if version == "" {
		version = "unknown"
	}
	blocks = append(blocks, styles.Subtitle.Render(fmt.Sprintf("%s Python %s", icons.Server.String(), version)))
	if res := p.resourceLine(); res != "" {
		blocks = append(blocks, res)
	}

	return lipgloss.NewStyle().
		Width(p.width).
		Height(p.height).
		Render(strings.Join(blocks, "\n"))
}

func (p *Panel) impactBlock(cfg widgets.MetricBlockConfig) string {
	impact := p.snap.Impact
	value := fmt.Sprintf("%s  score %d", widgets.ImpactBadge(impact.ImpactLevel), impact.HealthScore)
	return widgets.MetricBlock(icons.Gauge, "Gateway Impact", value, impact.RecommendationText(), cfg)
}

// resourceLine shows the Gateway's memory and CPU figures when it reports them
func (p *Panel) resourceLine() string {
	impact := p.snap.Impact
	var parts []string
	if impact.MemoryUsageMB != nil {
		parts = append(parts, fmt.Sprintf("%s %.0f MB", icons.Memory.String(), *impact.MemoryUsageMB))
	}
	if impact.CPUUsagePercent != nil {
		parts = append(parts, fmt.Sprintf("%s %.1f%% CPU", icons.CPU.String(), *impact.CPUUsagePercent))
	}
	if len(parts) == 0 {
		return ""
	}
	return styles.Subtitle.Render(strings.Join(parts, "  "))
}

func (p *Panel) lastTime() string {
	last, ok := p.times.Last()
	if !ok {
		return "--"
	}
	return fmt.Sprintf("%.0fms", last)
}

func (p *Panel) metricsSummary() string {
	m := p.snap.Metrics
	if m == nil {
		return "no Gateway metrics"
	}
	return fmt.Sprintf("%d runs, %.0f%% ok, avg %.0fms", m.TotalExecutions, m.SuccessRate(), m.AverageExecutionTime)
}

// StatusSummary is the one-line form for the status bar: pool counts with
// a health badge, the impact badge and the execution time sparkline
func (p *Panel) StatusSummary() string {
	if p.snap == nil || p.snap.Pool == nil {
		return styles.Subtitle.UnsetMarginBottom().Render("Gateway: waiting for pool stats")
	}

	pool := *p.snap.Pool
	parts := []string{
		fmt.Sprintf("%s %d/%d %s", icons.Pool.String(), pool.InUse, pool.TotalSize, widgets.PoolBadge(pool)),
		widgets.ImpactBadge(p.snap.Impact.ImpactLevel),
	}
	if spark := widgets.Sparkline(p.times.Values(), 12, styles.Primary); spark != "" {
		parts = append(parts, spark+" "+p.lastTime())
	}
	return strings.Join(parts, "  ")
}
