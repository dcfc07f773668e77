package core

// # Error Codes Reference
//
// Client-facing errors carry a code for support reference. Classified errors
// (see errors.go) map by Kind; unclassified failures are matched against
// known technical patterns, falling back to ERR000.
//
//	SHT001 - Missing parameter: a required query or body field is absent
//	SHT002 - Invalid payload: the body does not have the expected shape
//	SHT003 - Not found: the sheet does not exist
//	SHT004 - Conflict: the sheet changed since the client loaded it
//	SHT005 - Busy: too many spreadsheet conversions in progress
//
//	DB004  - Connection refused: Unable to connect to database
//	DB005  - Connection reset: Database connection was interrupted
//	DB006  - Timeout: Operation timed out
//	DB007  - Deadlock: Database was busy with conflicting operations
//	FILE002 - Invalid workbook: the uploaded file is not a readable xlsx
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//	REQ003 - Request body too large (set by the web layer)
//	RATE001 - Rate limited (set by the web layer)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var kindMessages = map[Kind]UserMessage{
	KindMissingParameter: {Action: "Provide the missing parameter and retry", Code: "SHT001"},
	KindValidation:       {Action: "Check the request body and retry", Code: "SHT002"},
	KindNotFound:         {Action: "Save the sheet before using it", Code: "SHT003"},
	KindConflict:         {Action: "Reload the sheet and apply your changes again", Code: "SHT004"},
	KindUnavailable:      {Action: "Please wait a moment and try again", Code: "SHT005"},
}

// errorPatterns maps technical causes of internal errors to user messages.
var errorPatterns = []errorPattern{
	// Database connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Workbook decoding
	{
		pattern: "zip: not a valid zip file",
		msg: UserMessage{
			Message: "The uploaded file is not a valid workbook",
			Action:  "Upload an .xlsx file",
			Code:    "FILE002",
		},
	},

	// Request lifecycle
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no specific pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Classified errors keep their own safe message. Internal errors keep the
// operation-level message (for example "unable to save sheet") when they have
// one, and take code and action from the first matching pattern on the cause.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		msg := kindMessages[e.Kind]
		msg.Message = e.Message
		return msg
	}

	msg := matchPattern(err)
	if e != nil && e.Message != "" && msg.Code == defaultMessage.Code {
		msg.Message = e.Message
	}
	return msg
}

func matchPattern(err error) UserMessage {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
