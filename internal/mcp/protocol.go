package mcp

import "encoding/json"

// Request represents a JSON-RPC request from a client.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     int             `json:"id,omitempty"`
}

// Response represents a JSON-RPC response to a client.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// IssueRef identifies an issue in tool parameters, as "12" or "BUG-12".
type IssueRef struct {
	Issue string `json:"issue"`
}

// DependParams are the parameters for issues_depend.
type DependParams struct {
	Issue  string   `json:"issue"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// ListParams are the parameters for issues_list.
type ListParams struct {
	Status string `json:"status,omitempty"`
}

// IssueSummary is the common projection of an issue in tool results.
type IssueSummary struct {
	Num      int    `json:"num"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority,omitempty"`
}

// DependenciesResult is the issues_dependencies payload.
type DependenciesResult struct {
	Issue     IssueSummary   `json:"issue"`
	DependsOn []IssueSummary `json:"depends_on"`
	Blocks    []IssueSummary `json:"blocks"`
}

// DependResult is the issues_depend payload.
type DependResult struct {
	Issue     int   `json:"issue"`
	Added     []int `json:"added"`
	Removed   []int `json:"removed"`
	DependsOn []int `json:"depends_on"`
}

// CriticalPathResult is the issues_critical_path payload.
type CriticalPathResult struct {
	Length int            `json:"length"`
	Chain  []IssueSummary `json:"chain"`
}

// GraphNode is one entry of the issues_deps_graph payload.
type GraphNode struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	DependsOn []int  `json:"depends_on"`
}

// ShowResult is the issues_show payload.
type ShowResult struct {
	Num       int    `json:"num"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Created   int64  `json:"created"`
	DependsOn []int  `json:"depends_on"`
	Blocks    []int  `json:"blocks"`
	Body      string `json:"body"`
}
