package errors

// errorTemplate defines a registered error type.
type errorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Well-known error codes.
const (
	CodeUpdateLoop        = "E001"
	CodeRenderFailure     = "E002"
	CodeCallbackFailure   = "E003"
	CodeHydrationMismatch = "E004"
	CodeProtocolDecode    = "E005"
)

// registry maps error codes to their templates.
var registry = map[string]errorTemplate{
	CodeUpdateLoop: {
		Category:   CategoryRuntime,
		Message:    "infinite update loop",
		Detail:     "A watcher re-queued itself more than the allowed number of times within a single flush. This usually means a watcher callback writes to a value the same watcher depends on.",
		Suggestion: "Break the cycle: do not write to a dependency from its own watcher callback, or guard the write behind a convergence check.",
	},
	CodeRenderFailure: {
		Category:   CategoryRuntime,
		Message:    "render function failed",
		Detail:     "The component's render function returned an error or panicked. The previously rendered tree is kept in place.",
		Suggestion: "Check the render function for nil dereferences and invalid state reads.",
	},
	CodeCallbackFailure: {
		Category:   CategoryRuntime,
		Message:    "watcher callback failed",
		Detail:     "A user-registered watch callback returned an error or panicked. The flush continued with the remaining watchers.",
		Suggestion: "Handle errors inside the callback; the runtime will not retry it.",
	},
	CodeHydrationMismatch: {
		Category:   CategoryHydration,
		Message:    "hydration mismatch",
		Detail:     "The server-rendered tree does not match the client virtual tree. The mismatched subtree was recreated from scratch.",
		Suggestion: "Make sure the render function produces the same output on server and client for the same state.",
	},
	CodeProtocolDecode: {
		Category:   CategoryProtocol,
		Message:    "patch frame decode failed",
		Detail:     "An incoming patch frame could not be decoded. The frame was dropped.",
		Suggestion: "Check that client and server protocol versions match.",
	},
}

// New creates a RuntimeError from a registered code.
// Unknown codes produce a generic runtime error carrying the code.
func New(code string) *RuntimeError {
	if tmpl, ok := registry[code]; ok {
		return &RuntimeError{
			Code:       code,
			Category:   tmpl.Category,
			Message:    tmpl.Message,
			Detail:     tmpl.Detail,
			Suggestion: tmpl.Suggestion,
		}
	}
	return &RuntimeError{
		Code:     code,
		Category: CategoryRuntime,
		Message:  "unknown error",
	}
}

// IsRegistered reports whether a code exists in the registry.
func IsRegistered(code string) bool {
	_, ok := registry[code]
	return ok
}
