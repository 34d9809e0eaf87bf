package dispatcher

import (
	"context"
	"sync"
)

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// taskGroup runs at most one background task per attempt. Task contexts
// derive from the group's root context, never from a request.
type taskGroup struct {
	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	tasks  map[string]*task
	wg     sync.WaitGroup
	closed bool
}

func newTaskGroup() *taskGroup {
	ctx, stop := context.WithCancel(context.Background())
	return &taskGroup{ctx: ctx, stop: stop, tasks: make(map[string]*task)}
}

// start runs fn for id unless a task for id is already running or the group
// is closed.
func (g *taskGroup) start(id string, fn func(ctx context.Context)) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	if _, running := g.tasks[id]; running {
		return false
	}

	ctx, cancel := context.WithCancel(g.ctx)
	t := &task{cancel: cancel, done: make(chan struct{})}
	g.tasks[id] = t
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			delete(g.tasks, id)
			g.mu.Unlock()
			cancel()
			close(t.done)
		}()
		fn(ctx)
	}()
	return true
}

func (g *taskGroup) cancel(id string) bool {
	g.mu.Lock()
	t, ok := g.tasks[id]
	g.mu.Unlock()
	if ok {
		t.cancel()
	}
	return ok
}

// done returns a channel closed when the task for id ends.
func (g *taskGroup) done(id string) (<-chan struct{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tasks[id]
	if !ok {
		return nil, false
	}
	return t.done, true
}

func (g *taskGroup) running() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// close cancels every task, refuses new ones and waits for running ones.
func (g *taskGroup) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.stop()
	g.wg.Wait()
}
