// ABOUTME: Data transfer objects for the Gateway's Python 3 REST API
// ABOUTME: Optional fields are pointers; accessor methods return total values

package client

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// ExecutionResult is the outcome of running code or evaluating an expression.
// Error is only set when Success is false.
type ExecutionResult struct {
	Success         bool    `json:"success"`
	Result          *string `json:"result,omitempty"`
	Error           *string `json:"error,omitempty"`
	ExecutionTimeMs *int64  `json:"executionTimeMs,omitempty"`
	Timestamp       *int64  `json:"timestamp,omitempty"`
}

// Output returns the result text, or "" when absent
func (r *ExecutionResult) Output() string {
	if r == nil || r.Result == nil {
		return ""
	}
	return *r.Result
}

// ErrorMessage returns the error text, or "" when absent
func (r *ExecutionResult) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}

// Duration returns the Gateway-reported execution time, 0 when absent
func (r *ExecutionResult) Duration() time.Duration {
	if r == nil || r.ExecutionTimeMs == nil {
		return 0
	}
	return time.Duration(*r.ExecutionTimeMs) * time.Millisecond
}

func (r *ExecutionResult) String() string {
	if r == nil {
		return "ExecutionResult{<nil>}"
	}
	return fmt.Sprintf("ExecutionResult{success=%t, result=%q, error=%q, time=%dms}",
		r.Success, r.Output(), r.ErrorMessage(), r.Duration().Milliseconds())
}

func newFailedResult(msg string) *ExecutionResult {
	now := time.Now().UnixMilli()
	return &ExecutionResult{Success: false, Error: &msg, Timestamp: &now}
}

// PoolStats is a snapshot of the Gateway's Python process pool
type PoolStats struct {
	TotalSize int `json:"totalSize"`
	Healthy   int `json:"healthy"`
	Available int `json:"available"`
	InUse     int `json:"inUse"`
}

// UnmarshalJSON accepts counts written as floats ("3.0"), truncating them
func (p *PoolStats) UnmarshalJSON(data []byte) error {
	var wire struct {
		TotalSize *float64 `json:"totalSize"`
		Healthy   *float64 `json:"healthy"`
		Available *float64 `json:"available"`
		InUse     *float64 `json:"inUse"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = PoolStats{
		TotalSize: wholeNumber(wire.TotalSize),
		Healthy:   wholeNumber(wire.Healthy),
		Available: wholeNumber(wire.Available),
		InUse:     wholeNumber(wire.InUse),
	}
	return nil
}

// wholeNumber truncates a JSON number to an int; absent means 0
func wholeNumber(f *float64) int {
	if f == nil {
		return 0
	}
	return int(math.Trunc(*f))
}

// IsHealthy reports whether every process in the pool is healthy.
// An empty pool is healthy.
func (p PoolStats) IsHealthy() bool {
	return p.Healthy == p.TotalSize
}

// Utilization returns the percentage of processes in use
func (p PoolStats) Utilization() float64 {
	if p.TotalSize == 0 {
		return 0
	}
	return float64(p.InUse) * 100 / float64(p.TotalSize)
}

func (p PoolStats) String() string {
	return fmt.Sprintf("PoolStats{total=%d, healthy=%d, available=%d, inUse=%d}",
		p.TotalSize, p.Healthy, p.Available, p.InUse)
}

// ImpactLevel grades the load the Python pool puts on the Gateway
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "LOW"
	ImpactModerate ImpactLevel = "MODERATE"
	ImpactHigh     ImpactLevel = "HIGH"
	ImpactCritical ImpactLevel = "CRITICAL"
)

// Rank orders levels from LOW (0) to CRITICAL (3); unknown levels rank -1
func (l ImpactLevel) Rank() int {
	switch ImpactLevel(strings.ToUpper(string(l))) {
	case ImpactLow:
		return 0
	case ImpactModerate:
		return 1
	case ImpactHigh:
		return 2
	case ImpactCritical:
		return 3
	default:
		return -1
	}
}

// ParseImpactLevel validates a user-supplied level name
func ParseImpactLevel(s string) (ImpactLevel, error) {
	l := ImpactLevel(strings.ToUpper(strings.TrimSpace(s)))
	if l.Rank() < 0 {
		return "", fmt.Errorf("invalid impact level %q (valid: LOW, MODERATE, HIGH, CRITICAL)", s)
	}
	return l, nil
}

// GatewayImpact is the Gateway's self-assessment of Python pool load
type GatewayImpact struct {
	ImpactLevel      ImpactLevel `json:"impactLevel"`
	HealthScore      int         `json:"healthScore"`
	Recommendation   *string     `json:"recommendation,omitempty"`
	MemoryUsageMB    *float64    `json:"memoryUsageMb,omitempty"`
	AverageCPUTimeMs *float64    `json:"averageCpuTimeMs,omitempty"`
	CPUUsagePercent  *float64    `json:"cpuUsagePercent,omitempty"`
}

type gatewayImpactFields GatewayImpact

// UnmarshalJSON accepts a health score written as a float
func (g *GatewayImpact) UnmarshalJSON(data []byte) error {
	var wire struct {
		gatewayImpactFields
		HealthScore *float64 `json:"healthScore"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*g = GatewayImpact(wire.gatewayImpactFields)
	g.HealthScore = wholeNumber(wire.HealthScore)
	return nil
}

// DefaultGatewayImpact is reported when the impact endpoint is unavailable
func DefaultGatewayImpact() GatewayImpact {
	rec := "All systems operational"
	return GatewayImpact{
		ImpactLevel:    ImpactLow,
		HealthScore:    100,
		Recommendation: &rec,
	}
}

// RecommendationText returns the recommendation, or "" when absent
func (g GatewayImpact) RecommendationText() string {
	if g.Recommendation == nil {
		return ""
	}
	return *g.Recommendation
}

// ScriptMetadata identifies a saved script. FolderPath is "/"-delimited;
// empty means the root folder.
type ScriptMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	CreatedDate  string `json:"createdDate"`
	LastModified string `json:"lastModified"`
	FolderPath   string `json:"folderPath"`
	Version      string `json:"version"`
}

// SavedScript is a script's metadata plus its code
type SavedScript struct {
	ScriptMetadata
	Code string `json:"code"`
}

// ExecutionMetrics are aggregate execution counters from /diagnostics
type ExecutionMetrics struct {
	TotalExecutions      int64   `json:"totalExecutions"`
	SuccessfulExecutions int64   `json:"successfulExecutions"`
	FailedExecutions     int64   `json:"failedExecutions"`
	AverageExecutionTime float64 `json:"averageExecutionTime"`
}

// SuccessRate returns successful*100/total, or 0 with no executions
func (m ExecutionMetrics) SuccessRate() float64 {
	if m.TotalExecutions == 0 {
		return 0
	}
	return float64(m.SuccessfulExecutions) * 100 / float64(m.TotalExecutions)
}

func (m ExecutionMetrics) String() string {
	return fmt.Sprintf("ExecutionMetrics{total=%d, successful=%d, failed=%d, avgTime=%.2fms, successRate=%.1f%%}",
		m.TotalExecutions, m.SuccessfulExecutions, m.FailedExecutions, m.AverageExecutionTime, m.SuccessRate())
}

// ParseExecutionMetrics decodes the raw /diagnostics body
func ParseExecutionMetrics(raw string) (ExecutionMetrics, error) {
	var m ExecutionMetrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ExecutionMetrics{}, fmt.Errorf("invalid diagnostics response: %w", err)
	}
	return m, nil
}

// SyntaxError is one problem reported by /check-syntax
type SyntaxError struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Severity, e.Message)
}

// SyntaxCheck is the result of a syntax check
type SyntaxCheck struct {
	Success bool          `json:"success"`
	Errors  []SyntaxError `json:"errors"`
}

// Completion is one code completion candidate
type Completion struct {
	Text        string `json:"text"`
	Type        string `json:"type"`
	Complete    string `json:"complete"`
	Description string `json:"description"`
	Docstring   string `json:"docstring"`
	Signature   string `json:"signature"`
}
