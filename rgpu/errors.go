package rgpu

import (
	"fmt"
	"os"
	"strings"

	"github.com/vitrailgpu/rgpu/internal/rlog"
)

// ErrorCode is the closed set of runtime (tier-2) error codes (spec §4.5).
type ErrorCode int

const (
	FailedInit ErrorCode = iota
	FailedShaderGen
	FailedShaderUniformSet
	FailedBufferGen
	FailedTextureGen
	FailedTargetCreation
)

func (c ErrorCode) String() string {
	switch c {
	case FailedInit:
		return "FAILED_INIT"
	case FailedShaderGen:
		return "FAILED_SHADER_GEN"
	case FailedShaderUniformSet:
		return "FAILED_SHADER_UNIFORM_SET"
	case FailedBufferGen:
		return "FAILED_BUFFER_GEN"
	case FailedTextureGen:
		return "FAILED_TEXTURE_GEN"
	case FailedTargetCreation:
		return "FAILED_TARGET_CREATION"
	default:
		return "UNKNOWN"
	}
}

// Error is a runtime (tier-2) error: a code plus a message that
// concatenates the backend's drained synchronous error tags (spec §4.5).
type Error struct {
	Code ErrorCode
	Msg  string
	// Tags holds the drained driver-error tags (e.g. "GL_INVALID_VALUE")
	// that were pending when the error was raised.
	Tags []string
}

func (e *Error) Error() string {
	if len(e.Tags) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Code, e.Msg, strings.Join(e.Tags, ", "))
}

func newError(code ErrorCode, tags []string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Tags: tags}
}

// ErrBackendNotImplemented is returned by reserved backends (spec §6:
// BACKEND_VULKAN "reserved, not implemented").
var ErrBackendNotImplemented = fmt.Errorf("rgpu: backend not implemented")

// raiseRuntime applies the two-tier error policy of spec §7 tier 2: log
// if the Gpu wants it, exit the process if the Gpu demands it, otherwise
// return the error to the caller.
func raiseRuntime(gpu *Gpu, err *Error) error {
	if gpu != nil && gpu.flags&LogErrors != 0 {
		rlog.Errorf("%s", err.Error())
	}
	if gpu != nil && gpu.flags&ExitOnError != 0 {
		rlog.Errorf("exit_on_error: terminating on %s", err.Error())
		osExit(1)
	}
	return err
}

// critical implements tier 1 of spec §7: log a critical with the
// enclosing operation name and return (the caller supplies the neutral
// zero value it should return alongside this call).
func critical(op, format string, args ...interface{}) {
	rlog.Critical(op, format, args...)
}

// osExit is a variable indirection over os.Exit so tests can intercept
// EXIT_ON_ERROR without killing the test binary.
var osExit = os.Exit
