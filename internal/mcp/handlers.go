package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mwhitford/abacus/internal/graph"
	"github.com/mwhitford/abacus/internal/issue"
	"github.com/mwhitford/abacus/internal/storage"
)

// handleRequest dispatches the request to the appropriate tool handler.
func (s *Server) handleRequest(req *Request) Response {
	switch req.Method {
	case "issues_dependencies":
		return s.handleDependencies(req)
	case "issues_depend":
		return s.handleDepend(req)
	case "issues_critical_path":
		return s.handleCriticalPath()
	case "issues_deps_graph":
		return s.handleDepsGraph(req)
	case "issues_show":
		return s.handleShow(req)
	case "issues_list":
		return s.handleList(req)
	default:
		return Response{Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// handleDependencies returns an issue's direct dependencies and dependents.
// The dependents are recomputed from the working set's depends_on lists, not
// read from the stored blocks mirror.
func (s *Server) handleDependencies(req *Request) Response {
	id, resp := s.resolveParam(req.Params)
	if resp != nil {
		return *resp
	}

	iss, err := s.repo.Get(id)
	if err != nil {
		return Response{Error: fmt.Sprintf("load issue: %v", err)}
	}
	if iss == nil {
		return Response{Error: fmt.Sprintf("%s not found", issue.Ref(id))}
	}

	dependsOn := make([]IssueSummary, 0, len(iss.Meta.DependsOn))
	for _, dep := range iss.Meta.DependsOn {
		depIss, err := s.repo.Get(dep)
		if err != nil {
			return Response{Error: fmt.Sprintf("load issue: %v", err)}
		}
		if depIss == nil {
			continue
		}
		dependsOn = append(dependsOn, IssueSummary{
			Num:    dep,
			Title:  depIss.Meta.Title,
			Status: string(depIss.Meta.Status),
		})
	}

	all, err := s.repo.List()
	if err != nil {
		return Response{Error: fmt.Sprintf("list issues: %v", err)}
	}
	blocks := make([]IssueSummary, 0)
	for i := range all {
		meta := &all[i].Meta
		for _, dep := range meta.DependsOn {
			if dep == id {
				blocks = append(blocks, IssueSummary{
					Num:    meta.ID,
					Title:  meta.Title,
					Status: string(meta.Status),
				})
				break
			}
		}
	}

	return Response{Result: DependenciesResult{
		Issue:     IssueSummary{Num: id, Title: iss.Meta.Title, Status: string(iss.Meta.Status)},
		DependsOn: dependsOn,
		Blocks:    blocks,
	}}
}

// handleDepend adds and removes dependency edges through the guarded
// mutation path.
func (s *Server) handleDepend(req *Request) Response {
	var params DependParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return Response{Error: fmt.Sprintf("invalid params: %v", err)}
	}

	id, err := storage.Resolve(params.Issue)
	if err != nil {
		return Response{Error: err.Error()}
	}

	add, err := resolveRefs(params.Add)
	if err != nil {
		return Response{Error: err.Error()}
	}
	remove, err := resolveRefs(params.Remove)
	if err != nil {
		return Response{Error: err.Error()}
	}

	dependsOn, err := graph.Apply(s.repo, id, add, remove)
	if err != nil {
		return Response{Error: err.Error()}
	}

	return Response{Result: DependResult{
		Issue:     id,
		Added:     nonNil(add),
		Removed:   nonNil(remove),
		DependsOn: nonNil(dependsOn),
	}}
}

// handleCriticalPath returns the longest dependency chain in the working set.
func (s *Server) handleCriticalPath() Response {
	v, err := graph.Load(s.repo)
	if err != nil {
		return Response{Error: fmt.Sprintf("list issues: %v", err)}
	}

	chain := graph.LongestChain(v)
	details := make([]IssueSummary, 0, len(chain))
	for _, id := range chain {
		n := v.Nodes[id]
		details = append(details, IssueSummary{
			Num:      id,
			Title:    n.Title,
			Status:   string(n.Status),
			Priority: string(n.Priority),
		})
	}

	return Response{Result: CriticalPathResult{Length: len(chain), Chain: details}}
}

// handleDepsGraph returns the working set as graph nodes, optionally scoped
// to the issues connected to a focus issue.
func (s *Server) handleDepsGraph(req *Request) Response {
	v, err := graph.Load(s.repo)
	if err != nil {
		return Response{Error: fmt.Sprintf("list issues: %v", err)}
	}

	ids := v.IDs
	if len(req.Params) > 0 && string(req.Params) != "null" {
		var params IssueRef
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{Error: fmt.Sprintf("invalid params: %v", err)}
		}
		if params.Issue != "" {
			focus, err := storage.Resolve(params.Issue)
			if err != nil {
				return Response{Error: err.Error()}
			}
			ids = graph.Closure(v, focus)
		}
	}

	nodes := make([]GraphNode, 0, len(ids))
	for _, id := range ids {
		n := v.Nodes[id]
		if n == nil {
			continue
		}
		nodes = append(nodes, GraphNode{
			ID:        id,
			Title:     n.Title,
			Status:    string(n.Status),
			DependsOn: nonNil(n.DependsOn),
		})
	}

	return Response{Result: nodes}
}

// handleShow returns the full issue record.
func (s *Server) handleShow(req *Request) Response {
	id, resp := s.resolveParam(req.Params)
	if resp != nil {
		return *resp
	}

	iss, err := s.repo.Get(id)
	if err != nil {
		return Response{Error: fmt.Sprintf("load issue: %v", err)}
	}
	if iss == nil {
		return Response{Error: fmt.Sprintf("%s not found", issue.Ref(id))}
	}

	return Response{Result: ShowResult{
		Num:       iss.Meta.ID,
		Title:     iss.Meta.Title,
		Status:    string(iss.Meta.Status),
		Priority:  string(iss.Meta.Priority),
		Created:   iss.Meta.Created,
		DependsOn: nonNil(iss.Meta.DependsOn),
		Blocks:    nonNil(iss.Meta.Blocks),
		Body:      iss.Body,
	}}
}

// handleList returns the working set, optionally filtered by status.
func (s *Server) handleList(req *Request) Response {
	var params ListParams
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{Error: fmt.Sprintf("invalid params: %v", err)}
		}
	}
	if params.Status != "" && !issue.Status(params.Status).IsValid() {
		return Response{Error: fmt.Sprintf("invalid status %q", params.Status)}
	}

	all, err := s.repo.List()
	if err != nil {
		return Response{Error: fmt.Sprintf("list issues: %v", err)}
	}

	summaries := make([]IssueSummary, 0, len(all))
	for i := range all {
		meta := &all[i].Meta
		if params.Status != "" && string(meta.Status) != params.Status {
			continue
		}
		summaries = append(summaries, IssueSummary{
			Num:      meta.ID,
			Title:    meta.Title,
			Status:   string(meta.Status),
			Priority: string(meta.Priority),
		})
	}

	return Response{Result: summaries}
}

// resolveParam parses a single-issue parameter block. A non-nil Response is
// the error to return.
func (s *Server) resolveParam(params json.RawMessage) (int, *Response) {
	var ref IssueRef
	if err := json.Unmarshal(params, &ref); err != nil {
		return 0, &Response{Error: fmt.Sprintf("invalid params: %v", err)}
	}
	id, err := storage.Resolve(ref.Issue)
	if err != nil {
		return 0, &Response{Error: err.Error()}
	}
	return id, nil
}

func resolveRefs(refs []string) ([]int, error) {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		id, err := storage.Resolve(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nonNil(list []int) []int {
	if list == nil {
		return []int{}
	}
	return list
}
