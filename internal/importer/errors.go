package importer

import "strings"

// UserMessage is an operator-facing rendering of an internal error: what went
// wrong, what to do about it, and a stable code the frontend can branch on.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// MapError translates an internal error into a UserMessage by matching
// against known failure shapes. Unmatched errors get a generic message so
// internals never leak to the operator verbatim.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "file is empty"):
		return UserMessage{
			Message: "The uploaded file is empty.",
			Action:  "Check that you exported the right file and try again.",
			Code:    "empty_file",
		}
	case strings.Contains(lower, "no data rows"):
		return UserMessage{
			Message: "The file has headers but no data rows.",
			Action:  "Add at least one data row below the header line.",
			Code:    "no_data_rows",
		}
	case strings.Contains(lower, "too many rows"):
		return UserMessage{
			Message: msg,
			Action:  "Split the file into smaller batches and import them separately.",
			Code:    "too_many_rows",
		}
	case strings.Contains(lower, "duplicate column header"):
		return UserMessage{
			Message: msg,
			Action:  "Rename or remove the duplicated column and re-upload.",
			Code:    "duplicate_header",
		}
	case strings.Contains(lower, "column header") && strings.Contains(lower, "empty"):
		return UserMessage{
			Message: msg,
			Action:  "Give every column a header or delete the empty column.",
			Code:    "empty_header",
		}
	case strings.Contains(lower, "unknown import type"):
		return UserMessage{
			Message: "That import type is not supported.",
			Action:  "Pick one of the listed import types.",
			Code:    "unknown_import_type",
		}
	case strings.Contains(lower, "cannot be rolled back"):
		return UserMessage{
			Message: msg,
			Action:  "Only finished imports can be rolled back, and only once.",
			Code:    "rollback_not_allowed",
		}
	case strings.Contains(lower, "not found"):
		return UserMessage{
			Message: "The requested record was not found.",
			Action:  "Check the id and try again.",
			Code:    "not_found",
		}
	case strings.Contains(lower, "context deadline exceeded") || strings.Contains(lower, "timeout"):
		return UserMessage{
			Message: "The operation took too long and was cancelled.",
			Action:  "Try again; if it keeps happening, import a smaller file.",
			Code:    "timeout",
		}
	case strings.Contains(lower, "connect"):
		return UserMessage{
			Message: "The database is temporarily unreachable.",
			Action:  "Wait a moment and try again.",
			Code:    "storage_unavailable",
		}
	default:
		return UserMessage{
			Message: "Something went wrong while processing the import.",
			Action:  "Try again; if the problem persists, contact support.",
			Code:    "internal_error",
		}
	}
}
