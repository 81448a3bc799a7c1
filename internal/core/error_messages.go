// Package core provides the CSV cleaning logic behind the portfolio demo.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// The demo page shows the message and code after a failed run, and the
// technical error is logged alongside it.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors related to the uploaded or input file:
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Upload a smaller file
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE003 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure file is comma-separated with a header row
//	          Patterns: "invalid csv"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Not CSV: Only .csv files can be cleaned
//	          Action: Export your data as CSV and try again
//	          Patterns: "not a csv file"
//
//	FILE006 - File not found: The requested file does not exist
//	          Action: Files are removed after a while. Run the cleaner again
//	          Patterns: "file not found", "no such file"
//
// # Cleaning Errors (CLN001-CLN099)
//
// Errors raised while reading rows or writing the cleaned output:
//
//	CLN001 - Ragged rows: A row has a different number of fields than the header
//	         Action: Make every row have one value per column
//	         Patterns: "wrong number of fields"
//
//	CLN002 - Bad quoting: A quoted field is not closed or has a stray quote
//	         Action: Check quotes in your file
//	         Patterns: "quoted-field"
//
//	CLN003 - Write failed: The cleaned file could not be saved
//	         Action: Please try again later
//	         Patterns: "write failed"
//
// # Job Errors (JOB001-JOB099)
//
// Errors related to job scheduling:
//
//	JOB001 - System busy: Too many cleaning jobs in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent jobs"
//
//	JOB002 - Timed out: The job took too long
//	         Action: Try a smaller file
//	         Patterns: "context deadline exceeded"
//
//	JOB003 - Cancelled: The request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
// # Mail Errors (MAIL001-MAIL099)
//
//	MAIL001 - Not configured: Email is not set up on this server
//	          Action: Reach out through the links on the about page
//	          Patterns: "mail not configured"
//
//	MAIL002 - Send failed: The email server rejected the message
//	          Action: Please try again later
//	          Patterns: "smtp"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again later
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. A ParseError always contains "invalid csv",
// so the row and encoding patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Cleaning Errors (CLN001-CLN003)
	// =========================================================================
	{
		pattern: "wrong number of fields",
		msg: UserMessage{
			Message: "A row has a different number of fields than the header",
			Action:  "Make every row have one value per column",
			Code:    "CLN001",
		},
	},
	{
		pattern: "quoted-field",
		msg: UserMessage{
			Message: "A quoted field is not closed or has a stray quote",
			Action:  "Check quotes in your file",
			Code:    "CLN002",
		},
	},
	{
		pattern: "write failed",
		msg: UserMessage{
			Message: "The cleaned file could not be saved",
			Action:  "Please try again later",
			Code:    "CLN003",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "not a csv file",
		msg: UserMessage{
			Message: "Only .csv files can be cleaned",
			Action:  "Export your data as CSV and try again",
			Code:    "FILE005",
		},
	},
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "The requested file does not exist",
			Action:  "Files are removed after a while. Run the cleaner again",
			Code:    "FILE006",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The requested file does not exist",
			Action:  "Files are removed after a while. Run the cleaner again",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Job Errors (JOB001-JOB003)
	// =========================================================================
	{
		pattern: "too many concurrent jobs",
		msg: UserMessage{
			Message: "System is busy cleaning other files",
			Action:  "Please wait a moment and try again",
			Code:    "JOB001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The job took too long",
			Action:  "Try a smaller file",
			Code:    "JOB002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "JOB003",
		},
	},

	// =========================================================================
	// Mail Errors (MAIL001-MAIL002)
	// =========================================================================
	{
		pattern: "mail not configured",
		msg: UserMessage{
			Message: "Email is not set up on this server",
			Action:  "Reach out through the links on the about page",
			Code:    "MAIL001",
		},
	},
	{
		pattern: "smtp",
		msg: UserMessage{
			Message: "The email server rejected the message",
			Action:  "Please try again later",
			Code:    "MAIL002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again later",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &ParseError{Err: ErrInvalidEncoding}
//	msg := MapError(err)
//	// msg.Code == "FILE002"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	return NewUserError(err).Display()
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// Display formats the user message as "Message (Code: XXX). Action".
// A nil UserError displays as the empty string.
func (e *UserError) Display() string {
	if e == nil || e.User.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", e.User.Message, e.User.Code, e.User.Action)
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
