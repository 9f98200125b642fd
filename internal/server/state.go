package server

import (
	"sync"
	"time"

	"rootfind/internal/rootfind"
)

// RunParams is the body of POST /start.
type RunParams struct {
	Func    string  `json:"func"`
	Phi     string  `json:"phi,omitempty"`
	Method  string  `json:"method"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	X0      float64 `json:"x0"`
	Tol     float64 `json:"tol"`
	MaxIter int     `json:"maxIter"`
}

// RunState is one run started through the API.
type RunState struct {
	ID        string
	Params    RunParams
	Method    rootfind.Method
	CreatedAt time.Time

	mu       sync.Mutex
	iters    []rootfind.Iter
	outcome  rootfind.Outcome
	done     bool
	finished chan struct{}
}

func newRunState(id string, p RunParams, m rootfind.Method) *RunState {
	return &RunState{
		ID:        id,
		Params:    p,
		Method:    m,
		CreatedAt: time.Now(),
		finished:  make(chan struct{}),
	}
}

// RunView is the JSON form of a run.
type RunView struct {
	ID        string          `json:"id"`
	Params    RunParams       `json:"params"`
	CreatedAt time.Time       `json:"createdAt"`
	Iters     []rootfind.Iter `json:"iters"`
	Done      bool            `json:"done"`
	Outcome   *OutcomeView    `json:"outcome,omitempty"`
}

// OutcomeView is the JSON form of an outcome. Root is omitted when rejected.
type OutcomeView struct {
	Status     string   `json:"status"`
	Root       *float64 `json:"root,omitempty"`
	Iterations int      `json:"iterations"`
	Reason     string   `json:"reason,omitempty"`
	Message    string   `json:"message"`
}

func (rs *RunState) Record(it rootfind.Iter) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.iters = append(rs.iters, it)
}

func (rs *RunState) Finish(o rootfind.Outcome) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.done {
		return
	}
	rs.outcome = o
	rs.done = true
	close(rs.finished)
}

// Finished is closed once the outcome is recorded.
func (rs *RunState) Finished() <-chan struct{} { return rs.finished }

func (rs *RunState) snapshot() RunView {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	v := RunView{
		ID:        rs.ID,
		Params:    rs.Params,
		CreatedAt: rs.CreatedAt,
		Iters:     append([]rootfind.Iter{}, rs.iters...),
		Done:      rs.done,
	}
	if rs.done {
		ov := outcomeView(rs.outcome)
		v.Outcome = &ov
	}
	return v
}

type store struct {
	mu   sync.Mutex
	runs map[string]*RunState
}

func newStore() *store {
	return &store{runs: map[string]*RunState{}}
}

func (s *store) save(rs *RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rs.ID] = rs
}

func (s *store) get(id string) *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

func (s *store) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runs[id]
	delete(s.runs, id)
	return ok
}
