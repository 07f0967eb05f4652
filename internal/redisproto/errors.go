package redisproto

import "github.com/joomcode/errorx"

// This package roots every protocol-level error in a joomcode/errorx
// namespace, following the teacher's transitive use of that library (see
// SPEC_FULL.md §9.2) for typed, traceable error values instead of bare
// fmt.Errorf strings. The errorx type is kept as CommandError.cause for
// errors.As callers; the wire-facing text lives in CommandError.Msg so
// errorx's own formatting never leaks onto the socket.
var (
	namespace = errorx.NewNamespace("redisproto")

	arityTrait   = errorx.RegisterTrait("arity")
	parseTrait   = errorx.RegisterTrait("parse")
	unknownTrait = errorx.RegisterTrait("unknown_command")

	arityErrType   = namespace.NewType("arity", arityTrait)
	parseErrType   = namespace.NewType("parse", parseTrait)
	unknownErrType = namespace.NewType("unknown_command", unknownTrait)
)

// CommandError is a reply-ready protocol error: Prefix is the RESP error
// prefix word (ERR, WRONGTYPE, ...) and Error() returns the full message
// spec.md §7 wants written after the leading '-'.
type CommandError struct {
	Prefix string
	Msg    string
	cause  error
}

func (e *CommandError) Error() string { return e.Msg }

// Unwrap exposes the underlying errorx.Error so callers can use
// errors.As/Is against errorx traits if they need to.
func (e *CommandError) Unwrap() error { return e.cause }

func errArity(cmd string) *CommandError {
	msg := "ERR wrong number of arguments for '" + cmd + "' command"
	return &CommandError{Prefix: "ERR", Msg: msg, cause: arityErrType.New(msg)}
}

func errSyntax() *CommandError {
	const msg = "ERR syntax error"
	return &CommandError{Prefix: "ERR", Msg: msg, cause: parseErrType.New(msg)}
}

func errNotInteger() *CommandError {
	const msg = "ERR value is not an integer or out of range"
	return &CommandError{Prefix: "ERR", Msg: msg, cause: parseErrType.New(msg)}
}

func errUnknownCommand(cmd string) *CommandError {
	msg := "ERR unknown command '" + cmd + "'"
	return &CommandError{Prefix: "ERR", Msg: msg, cause: unknownErrType.New(msg)}
}

// NewWrongType is the reply for a shape mismatch (spec.md §7); the store
// package's ErrWrongType carries the identical message.
func NewWrongType() *CommandError {
	return &CommandError{Prefix: "WRONGTYPE", Msg: "WRONGTYPE Operation against a key holding the wrong kind of value"}
}

// NewNoSuchKey is the reply for commands that treat a missing key as
// fatal (RENAME on an absent source, for example).
func NewNoSuchKey() *CommandError {
	return &CommandError{Prefix: "ERR", Msg: "ERR no such key"}
}

// NewForbiddenInSubscribe replies naming the command that a Subscribed
// session attempted outside {SUBSCRIBE, UNSUBSCRIBE, PING, QUIT}.
func NewForbiddenInSubscribe(cmd string) *CommandError {
	return &CommandError{
		Prefix: "ERR",
		Msg:    "ERR Can't execute '" + cmd + "': only (P|S)SUBSCRIBE / (P|S)UNSUBSCRIBE / PING / QUIT are allowed in this context",
	}
}
