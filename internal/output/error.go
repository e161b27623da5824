package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// ErrorOutput is the JSON envelope for an error.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError writes err for the user.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}
	detail := describe(err)

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ErrorOutput{Error: detail})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", detail.Message)
	if len(detail.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(detail.Details))
		for k := range detail.Details {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, detail.Details[k])
		}
	}
	if detail.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", detail.Suggestion)
	}
	_, werr := io.WriteString(w, sb.String())
	return werr
}

// describe flattens err. A wrapped cause is appended to the message; an
// error that merely wraps a kind keeps its full text.
func describe(err error) ErrorDetail {
	var te *trerr.TrickleError
	if !errors.As(err, &te) {
		return ErrorDetail{Code: trerr.Code(err), Message: err.Error(), ExitCode: trerr.ExitCode(err)}
	}
	msg := te.Message
	switch {
	case err != error(te):
		msg = err.Error()
	case te.Cause != nil && te.Cause.Error() != te.Message:
		msg += ": " + te.Cause.Error()
	}
	return ErrorDetail{
		Code:       te.Code,
		Message:    msg,
		Details:    te.Details,
		Suggestion: te.Suggestion,
		ExitCode:   te.ExitCode,
	}
}
