package ir

// Graph is the whole in-memory SSA program: every function and every
// global object materialized so far. It is the "IrGraph" component
// of the core and is not safe for concurrent use — see spec.md §5.
type Graph struct {
	Funcs   []*Func
	Globals []*Global

	byFuncName   map[string]*Func
	byGlobalName map[string]*Global
}

// NewGraph creates an empty program graph.
func NewGraph() *Graph {
	return &Graph{
		byFuncName:   map[string]*Func{},
		byGlobalName: map[string]*Global{},
	}
}

// AddFunc registers fn in the graph.
func (g *Graph) AddFunc(fn *Func) {
	g.Funcs = append(g.Funcs, fn)
	g.byFuncName[fn.Name] = fn
}

// FuncByName looks up a function by its current name.
func (g *Graph) FuncByName(name string) (*Func, bool) {
	fn, ok := g.byFuncName[name]
	return fn, ok
}

// RenameFuncIndex updates the name-lookup index after a function's
// Name field has been changed directly; callers that rename through
// xform.RenameFunction get this for free.
func (g *Graph) RenameFuncIndex(oldName string, fn *Func) {
	if g.byFuncName[oldName] == fn {
		delete(g.byFuncName, oldName)
	}
	g.byFuncName[fn.Name] = fn
}

// AddGlobal registers gv in the graph.
func (g *Graph) AddGlobal(gv *Global) {
	g.Globals = append(g.Globals, gv)
	g.byGlobalName[gv.Name] = gv
}

// GlobalByName looks up a global by its current name.
func (g *Graph) GlobalByName(name string) (*Global, bool) {
	gv, ok := g.byGlobalName[name]
	return gv, ok
}

// RemoveGlobal unregisters gv (used when AddressMaterializer discards
// a placeholder global in favor of a second, correctly-typed one).
func (g *Graph) RemoveGlobal(gv *Global) {
	for i, e := range g.Globals {
		if e == gv {
			g.Globals = append(g.Globals[:i], g.Globals[i+1:]...)
			break
		}
	}
	if g.byGlobalName[gv.Name] == gv {
		delete(g.byGlobalName, gv.Name)
	}
}

// EraseQueue is the caller-controlled deferred-erasure handle: a
// client that is mid-traversal over a structure that holds
// instruction pointers (and so cannot tolerate instructions vanishing
// under it) passes one in; operations that would otherwise erase
// eagerly append to it instead, and the client drains it with Flush
// once its own traversal completes. A nil *EraseQueue means "erase
// eagerly," matching spec.md's §4.2 step 5 / §9 design note.
type EraseQueue struct {
	pending []*Instr
}

// NewEraseQueue creates an empty deferred-erase handle.
func NewEraseQueue() *EraseQueue { return &EraseQueue{} }

// Add queues in for later erasure.
func (q *EraseQueue) Add(in *Instr) {
	q.pending = append(q.pending, in)
}

// Flush erases every queued instruction from its block.
func (q *EraseQueue) Flush() {
	for _, in := range q.pending {
		if in.Block != nil {
			in.Block.Erase(in)
		}
	}
	q.pending = nil
}

// EraseOrQueue erases in immediately if q is nil, else queues it.
func EraseOrQueue(q *EraseQueue, in *Instr) {
	if q == nil {
		if in.Block != nil {
			in.Block.Erase(in)
		}
		return
	}
	q.Add(in)
}
