package rgpu

// Dispatch executes the compiled tree on the backend (spec §4.3,
// §4.4 "commands_dispatch"). Must run on the Gpu's claim thread; the
// tree-walk itself (setup/teardown, framebuffer binding, MSAA resolve,
// leaf draw calls) is backend-specific and lives behind Backend.
func (c *Commands) Dispatch() error {
	if !c.gpu.checkClaim("commands_dispatch") {
		return nil
	}
	c.runLog = nil
	if err := c.gpu.backend.DispatchCommands(c); err != nil {
		if rerr, ok := err.(*Error); ok {
			return raiseRuntime(c.gpu, rerr)
		}
		return raiseRuntime(c.gpu, newError(FailedTargetCreation, nil, "dispatch: %v", err))
	}
	return nil
}
