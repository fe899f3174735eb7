package rgpu

import "sync/atomic"

// Commands is the immutable, compiled form of a Plan (spec §3
// "Commands"). It owns the instruction tree (now read-only) plus, when
// compiled with debug annotation, the parallel compile-time and
// run-time call logs (spec §4.2 "debug call log").
type Commands struct {
	gpu  *Gpu
	refs int32

	root       *PassNode
	maxDepth   int
	debugLog   bool
	compileLog []string
	runLog     []string
}

func (c *Commands) ref() { atomic.AddInt32(&c.refs, 1) }

func (c *Commands) unref() {
	if atomic.AddInt32(&c.refs, -1) != 0 {
		return
	}
	releaseTree(c.root)
	c.gpu.Unref()
}

// Ref/Unref implement spec §6 commands_ref/commands_unref.
func (c *Commands) Ref() *Commands {
	c.ref()
	return c
}
func (c *Commands) Unref() { c.unref() }

// releaseTree walks the compiled tree unref-ing every Shader, Texture,
// and Buffer it references, mirroring the strong references taken
// while the plan was built (ConfigShader, resource Values, Append, Blit).
func releaseTree(n Instruction) {
	switch t := n.(type) {
	case *PassNode:
		if t.Shader != nil {
			t.Shader.unref()
		}
		for _, tg := range t.Targets {
			if tg.Texture != nil {
				tg.Texture.unref()
			}
		}
		for _, u := range t.Uniforms.Ordered() {
			v := u.Value
			v.Clear()
		}
		for _, child := range t.Children {
			releaseTree(child)
		}
	case *VerticesOp:
		for _, b := range t.Buffers {
			b.unref()
		}
	case *BlitOp:
		if t.Src != nil {
			t.Src.unref()
		}
	}
}

// DebugCompileLog returns the compile-time annotation lines recorded
// when the Commands was produced via UnrefToCommandsDebug (spec §3
// "debug call log").
func (c *Commands) DebugCompileLog() []string { return c.compileLog }

// DebugRunLog returns the run-time call log recorded by the most recent
// dispatch, or nil if this Commands was not compiled with debug
// annotation enabled.
func (c *Commands) DebugRunLog() []string { return c.runLog }

func (c *Commands) logRun(line string) {
	if c.debugLog {
		c.runLog = append(c.runLog, line)
	}
}

// LogRun appends a run-time call-log line, a no-op unless this Commands
// was compiled with debug annotation (spec §3 "debug call log"). Called
// by a Backend's DispatchCommands as it walks the tree.
func (c *Commands) LogRun(line string) { c.logRun(line) }

// DebugEnabled reports whether this Commands wants a run-time call log.
func (c *Commands) DebugEnabled() bool { return c.debugLog }

// MaxDepth reports the tree's maximum pass depth; compilation grew the
// framebuffer stack to MaxDepth()+2 (spec §4.2 step 3).
func (c *Commands) MaxDepth() int { return c.maxDepth }

// Root exposes the compiled tree's root pass node for the dispatcher.
func (c *Commands) Root() *PassNode { return c.root }
