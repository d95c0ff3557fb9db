// ABOUTME: Code execution and expression evaluation endpoints
// ABOUTME: Malformed responses become failed results; only transport failures are errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// DefaultExecutionError is reported when a failed execution carries no error text
const DefaultExecutionError = "Execution failed"

type execRequest struct {
	Code      string                 `json:"code"`
	Variables map[string]interface{} `json:"variables"`
}

type evalRequest struct {
	Expression string                 `json:"expression"`
	Variables  map[string]interface{} `json:"variables"`
}

// executionResultWire mirrors the /exec and /eval response. Result and error
// are raw so that non-string JSON values are rendered rather than rejected.
type executionResultWire struct {
	Success         *bool           `json:"success"`
	Result          json.RawMessage `json:"result"`
	Error           json.RawMessage `json:"error"`
	ExecutionTimeMs *float64        `json:"executionTimeMs"`
	Timestamp       *float64        `json:"timestamp"`
}

// ExecuteCode runs Python code on the Gateway. The returned error is non-nil
// only when the Gateway could not be reached or answered with a non-200 status.
// A failed script is reported through the result's Success flag.
func (c *Client) ExecuteCode(ctx context.Context, code string, variables map[string]interface{}) (*ExecutionResult, error) {
	slog.Debug("Executing code", "length", len(code), "variables", len(variables))

	body, err := c.post(ctx, "/exec", execRequest{Code: code, Variables: nonNilVars(variables)})
	if err != nil {
		return nil, err
	}
	return parseExecutionResult(body), nil
}

// EvaluateExpression evaluates a single Python expression on the Gateway.
// Same error contract as ExecuteCode.
func (c *Client) EvaluateExpression(ctx context.Context, expression string, variables map[string]interface{}) (*ExecutionResult, error) {
	slog.Debug("Evaluating expression", "expression", expression, "variables", len(variables))

	body, err := c.post(ctx, "/eval", evalRequest{Expression: expression, Variables: nonNilVars(variables)})
	if err != nil {
		return nil, err
	}
	return parseExecutionResult(body), nil
}

func nonNilVars(v map[string]interface{}) map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}

// parseExecutionResult never fails: an undecodable body yields a failed result
func parseExecutionResult(body []byte) *ExecutionResult {
	var wire *executionResultWire
	if err := json.Unmarshal(body, &wire); err != nil {
		slog.Warn("Failed to parse execution response", "error", err)
		return newFailedResult(fmt.Sprintf("Failed to parse response: %v", err))
	}
	if wire == nil {
		slog.Warn("Execution response is not an object", "body", string(body))
		return newFailedResult("Failed to parse response: expected a JSON object")
	}

	res := &ExecutionResult{
		Success: wire.Success != nil && *wire.Success,
		Result:  rawString(wire.Result),
	}
	if !res.Success {
		res.Error = rawString(wire.Error)
		if res.Error == nil {
			msg := DefaultExecutionError
			res.Error = &msg
		}
	}
	if wire.ExecutionTimeMs != nil {
		v := int64(math.Trunc(*wire.ExecutionTimeMs))
		res.ExecutionTimeMs = &v
	}
	if wire.Timestamp != nil {
		v := int64(math.Trunc(*wire.Timestamp))
		res.Timestamp = &v
	}
	return res
}

// rawString renders a JSON value as text: strings unquoted, null or absent as nil,
// anything else as its compact JSON form.
func rawString(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s
		}
	}
	if raw[0] == '{' || raw[0] == '[' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			s = buf.String()
			return &s
		}
	}
	s = string(raw)
	return &s
}
