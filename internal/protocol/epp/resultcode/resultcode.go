// Package resultcode holds the RFC 5730 result codes this profile emits, as
// a leaf package both the dispatcher and the object handlers depend on.
package resultcode

// Code is one of the RFC 5730 result codes this profile emits.
type Code int

const (
	Success                  Code = 1000
	SuccessPending           Code = 1001
	SuccessLogout            Code = 1500
	UnknownCommand           Code = 2000
	SyntaxError              Code = 2001
	CommandUseError          Code = 2002
	MissingParameter         Code = 2003
	ParameterValueRangeError Code = 2004
	ParameterValueSyntax     Code = 2005
	UnimplementedOption      Code = 2101
	UnimplementedExtension   Code = 2102
	AuthorizationError       Code = 2201
	InvalidAuthInfo          Code = 2202
	ObjectExists             Code = 2302
	ObjectDoesNotExist       Code = 2303
	ObjectStatusProhibits    Code = 2304
	ObjectAssociationExists  Code = 2305
	ParameterValuePolicy     Code = 2306
	CommandFailed            Code = 2400
)

// defaultMessage holds the stock message for codes a caller builds a
// generic response for without a more specific message of its own.
var defaultMessage = map[Code]string{
	Success:                  "Command completed successfully",
	SuccessPending:           "Command completed successfully; action pending",
	SuccessLogout:            "Command completed successfully; ending session",
	UnknownCommand:           "Unknown command",
	SyntaxError:              "Command syntax error",
	CommandUseError:          "Authentication error",
	MissingParameter:         "Required parameter missing",
	ParameterValueRangeError: "Parameter value range error",
	ParameterValueSyntax:     "Parameter value syntax error",
	UnimplementedOption:      "Unimplemented option",
	UnimplementedExtension:   "Object not supported",
	AuthorizationError:       "Authorization error",
	InvalidAuthInfo:          "Invalid authorization information",
	ObjectExists:             "Object exists",
	ObjectDoesNotExist:       "Object does not exist",
	ObjectStatusProhibits:    "Object status prohibits operation",
	ObjectAssociationExists:  "Object association prohibits operation",
	ParameterValuePolicy:     "Parameter value policy error",
	CommandFailed:            "Command failed",
}

// DefaultMessage returns the stock message for a result code, or a generic
// fallback if none is registered.
func DefaultMessage(code Code) string {
	if msg, ok := defaultMessage[code]; ok {
		return msg
	}
	return "Command failed"
}
