package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyPrompt        = errors.New("empty prompt")

	ErrTransport      = errors.New("transport failure")
	ErrDecode         = errors.New("malformed response")
	ErrFieldMissing   = errors.New("field missing")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrColumnMismatch = errors.New("columns differ in row count")

	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownOption  = errors.New("unknown option")
	ErrUnsupported    = errors.New("not supported on this platform")
)

const (
	// NotImplementedReply answers command names missing from the registry.
	NotImplementedReply = "Not implemented :("
	// InvalidOptionReply answers known commands called with an unknown sub-option.
	InvalidOptionReply = "Invalid option"
	// UnknownBucket is the counter bucket shared by every unrecognised command name.
	UnknownBucket = "unknown"
)

type Color int

const (
	ColorDarkPurple Color = 0x71368a
	ColorRed        Color = 0xe74c3c
)
