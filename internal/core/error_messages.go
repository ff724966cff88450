package core

// error_messages.go maps technical errors to stable, user-facing codes.
//
// # Error Codes Reference
//
// Clients and support staff can quote the code to identify a failure quickly.
//
// # Input Errors (JSON001-JSON099)
//
//	JSON002 - Not an array: The body is JSON but not an array of orders
//	          Action: Send the orders as a JSON array, e.g. [{"id":"1",...}]
//	          Patterns: "expected a json array"
//
//	JSON001 - Invalid JSON: The body could not be parsed
//	          Action: Check the payload for syntax errors and non-numeric numbers
//	          Patterns: "invalid json"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Body too large: The request exceeds the configured size limit
//	         Action: Split the batch into smaller requests
//	         Patterns: "request body too large"
//
//	REQ002 - Request cancelled: The client went away mid-stream
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ003 - Request timeout: Processing took longer than allowed
//	         Action: Send a smaller batch or try again later
//	         Patterns: "context deadline exceeded"
//
// # Capacity (BUSY001)
//
//	BUSY001 - System busy: Too many batches are being transformed
//	          Action: Please wait a moment and try again
//	          Patterns: "too many batches"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so more specific patterns are listed first.

import "strings"

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

// errorPatterns is ordered: the not-an-array case also carries "invalid json".
var errorPatterns = []errorPattern{
	{
		pattern: "expected a json array",
		msg: UserMessage{
			Message: "Request body must be a JSON array of orders",
			Action:  `Send the orders as a JSON array, e.g. [{"id":"1",...}]`,
			Code:    "JSON002",
		},
	},
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "Invalid JSON format",
			Action:  "Check the payload for syntax errors and non-numeric numbers",
			Code:    "JSON001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body exceeds the maximum size",
			Action:  "Split the batch into smaller requests",
			Code:    "REQ001",
		},
	},
	{
		pattern: "too many batches",
		msg: UserMessage{
			Message: "System is busy processing other batches",
			Action:  "Please wait a moment and try again",
			Code:    "BUSY001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Send a smaller batch or try again later",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(&DecodeError{Index: 0, Err: io.ErrUnexpectedEOF})
//	// msg.Code == "JSON001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback. Only errors that are not user facing carry
// technical details in development responses.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
