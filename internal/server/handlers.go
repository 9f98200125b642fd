package server

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"rootfind/internal/logger"
	"rootfind/internal/metrics"
	"rootfind/internal/report"
	"rootfind/internal/rootfind"
	"rootfind/internal/sse"
)

const samples = 400

// Server holds the runs started through the HTTP API.
type Server struct {
	runs    *store
	hub     *sse.Hub
	metrics *metrics.Metrics
	reg     *prometheus.Registry
	wg      sync.WaitGroup
}

// New creates a server whose run metrics are registered on reg.
func New(reg *prometheus.Registry) *Server {
	return &Server{
		runs:    newStore(),
		hub:     sse.NewHub(),
		metrics: metrics.New(reg),
		reg:     reg,
	}
}

// Wait blocks until every started run has finished.
func (s *Server) Wait() { s.wg.Wait() }

// StartRun validates the parameters, samples f for plotting and starts the run.
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if p.MaxIter <= 0 {
		p.MaxIter = 50
	}
	if p.Tol <= 0 {
		p.Tol = 1e-5
	}
	method, err := rootfind.ParseMethod(p.Method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := rootfind.ParseExpr(p.Func)
	if err != nil {
		http.Error(w, "error in function expression: "+err.Error(), http.StatusBadRequest)
		return
	}
	var phi rootfind.Func
	if method == rootfind.FixedPoint {
		if p.Phi == "" {
			http.Error(w, "fixed_point requires phi", http.StatusBadRequest)
			return
		}
		e, err := rootfind.ParseExpr(p.Phi)
		if err != nil {
			http.Error(w, "error in phi expression: "+err.Error(), http.StatusBadRequest)
			return
		}
		phi = e
	}

	spec := rootfind.Spec{Method: method, A: p.A, B: p.B, X0: p.X0, Tol: p.Tol, MaxIter: p.MaxIter}
	if err := spec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lo, hi := window(spec)
	xs, ys := sample(f, lo, hi)

	rs := newRunState(uuid.NewString(), p, method)
	s.runs.save(rs)
	logger.Info("run started", "run_id", rs.ID, "method", string(method), "func", p.Func)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.publish(rs.ID, map[string]any{"type": "start", "id": rs.ID})

		sink := report.Tee(
			rs,
			&eventSink{s: s, id: rs.ID},
			report.Log{Method: method, RunID: rs.ID},
			s.metrics.Sink(method),
		)
		// spec was validated above, so Solve cannot fail here
		_, _ = rootfind.Solve(f, phi, spec, sink)
	}()

	writeJSON(w, map[string]any{
		"id": rs.ID,
		"xs": xs,
		"ys": ys,
	})
}

// GetRun returns the records and, once finished, the outcome of a run.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodDelete {
		s.runs.delete(rs.ID)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, rs.snapshot())
}

// ExportCSV exports the iterations of a run as CSV.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v := rs.snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=iterations_"+rs.ID+".csv")
	if err := report.WriteCSV(w, rs.Method, v.Iters); err != nil {
		logger.Error("csv export failed", "run_id", rs.ID, "error", err)
	}
}

// Stream sends run events over SSE until the run is done or the client leaves.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.hub.Subscribe(rs.ID)
	defer cancel()

	// a run that finished before the client subscribed is replayed as one event
	if rs.snapshot().Done {
		writeDone(w, rs)
		flusher.Flush()
		return
	}

	// forward reports whether the stream should go on after msg
	forward := func(msg string) bool {
		if err := sse.WriteEvent(w, "msg", msg); err != nil {
			return false
		}
		flusher.Flush()
		return !isDone(msg)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			if !forward(msg) {
				return
			}
		case <-rs.Finished():
			// the hub may have dropped the done event; drain, then close from the snapshot
			for {
				select {
				case msg := <-ch:
					if !forward(msg) {
						return
					}
				default:
					writeDone(w, rs)
					flusher.Flush()
					return
				}
			}
		}
	}
}

func writeDone(w http.ResponseWriter, rs *RunState) {
	msg, err := json.Marshal(map[string]any{"type": "done", "run": rs.snapshot()})
	if err != nil {
		logger.Error("event encoding failed", "run_id", rs.ID, "error", err)
		return
	}
	_ = sse.WriteEvent(w, "msg", string(msg))
}

func isDone(msg string) bool {
	var ev struct {
		Type string `json:"type"`
	}
	return json.Unmarshal([]byte(msg), &ev) == nil && ev.Type == "done"
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*RunState, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return nil, false
	}
	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "unknown id", http.StatusNotFound)
		return nil, false
	}
	return rs, true
}

func (s *Server) publish(id string, payload map[string]any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		logger.Error("event encoding failed", "run_id", id, "error", err)
		return
	}
	s.hub.Publish(id, string(msg))
}

// eventSink forwards a run to its SSE subscribers.
type eventSink struct {
	s  *Server
	id string
}

func (e *eventSink) Record(it rootfind.Iter) {
	e.s.publish(e.id, map[string]any{"type": "iter", "iter": it})
}

func (e *eventSink) Finish(o rootfind.Outcome) {
	e.s.publish(e.id, map[string]any{"type": "done", "outcome": outcomeView(o)})
}

func outcomeView(o rootfind.Outcome) OutcomeView {
	v := OutcomeView{
		Status:     o.Status.String(),
		Iterations: o.Iterations,
		Reason:     o.Reason.String(),
	}
	switch o.Status {
	case rootfind.Converged:
		v.Message = "root found"
	case rootfind.MaxIterations:
		v.Message = "maximum iterations reached"
	default:
		v.Message = report.RejectionMessage(o)
	}
	if o.Status != rootfind.Rejected && !math.IsNaN(o.Root) && !math.IsInf(o.Root, 0) {
		root := o.Root
		v.Root = &root
	}
	return v
}

// window is the plotting range: the bracket or seeds, or x0 ± 1.
func window(spec rootfind.Spec) (float64, float64) {
	lo, hi := spec.A, spec.B
	if spec.Method == rootfind.Newton || spec.Method == rootfind.FixedPoint {
		lo, hi = spec.X0-1, spec.X0+1
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

// sample evaluates f on an even grid. Points where f is undefined are null.
func sample(f rootfind.Func, lo, hi float64) ([]float64, []*float64) {
	xs := make([]float64, samples)
	ys := make([]*float64, samples)
	h := (hi - lo) / float64(samples-1)
	for i := range xs {
		x := lo + float64(i)*h
		xs[i] = x
		if y, err := f.Eval(x); err == nil {
			ys[i] = &y
		}
	}
	return xs, ys
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encoding failed", "error", err)
	}
}
