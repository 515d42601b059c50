package sqlmodel

import (
	"fmt"
	"strings"
)

// ErrorKind is the top-level discriminant of the error sum type described
// in spec §7. Each kind carries an optional SubKind narrowing it further.
type ErrorKind int

const (
	KindErrConnection ErrorKind = iota
	KindErrProtocol
	KindErrQuery
	KindErrType
	KindErrValidation
	KindErrCustom
)

func (k ErrorKind) String() string {
	switch k {
	case KindErrConnection:
		return "Connection"
	case KindErrProtocol:
		return "Protocol"
	case KindErrQuery:
		return "Query"
	case KindErrType:
		return "Type"
	case KindErrValidation:
		return "Validation"
	case KindErrCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// ConnectionSubKind narrows KindErrConnection.
type ConnectionSubKind int

const (
	ConnConnect ConnectionSubKind = iota
	ConnRefused
	ConnDisconnected
	ConnAuthentication
	ConnSsl
)

func (k ConnectionSubKind) String() string {
	switch k {
	case ConnConnect:
		return "Connect"
	case ConnRefused:
		return "Refused"
	case ConnDisconnected:
		return "Disconnected"
	case ConnAuthentication:
		return "Authentication"
	case ConnSsl:
		return "Ssl"
	default:
		return "Unknown"
	}
}

// QuerySubKind narrows KindErrQuery.
type QuerySubKind int

const (
	QuerySyntax QuerySubKind = iota
	QueryConstraint
	QueryDeadlock
	QuerySerialization
	QueryTimeout
	QueryCancelled
	QueryNotFound
	QueryPermission
	QueryDataTruncation
	QueryDatabase
)

func (k QuerySubKind) String() string {
	switch k {
	case QuerySyntax:
		return "Syntax"
	case QueryConstraint:
		return "Constraint"
	case QueryDeadlock:
		return "Deadlock"
	case QuerySerialization:
		return "Serialization"
	case QueryTimeout:
		return "Timeout"
	case QueryCancelled:
		return "Cancelled"
	case QueryNotFound:
		return "NotFound"
	case QueryPermission:
		return "Permission"
	case QueryDataTruncation:
		return "DataTruncation"
	case QueryDatabase:
		return "Database"
	default:
		return "Unknown"
	}
}

// TypeErrorInfo carries the detail for a KindErrType error.
type TypeErrorInfo struct {
	Expected string
	Actual   string
	Column   string
}

// QueryErrorInfo carries backend-reported detail for a KindErrQuery error.
type QueryErrorInfo struct {
	SubKind  QuerySubKind
	SQLState string
	SQL      string
	Detail   string
	Hint     string
	Position int
}

// FieldViolation is a single per-field validation failure (spec §4.5/§8.4.6).
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationInfo carries the accumulated violations for a KindErrValidation
// error. Unlike the other kinds, a single Error of this kind aggregates
// every violation found rather than short-circuiting on the first.
type ValidationInfo struct {
	ModelName  string
	Fields     []FieldViolation
	ModelLevel []string
}

// Error is the single error sum type used throughout this module and its
// driver packages. Exactly one of ConnKind/QueryErr/TypeInfo/Validate
// is meaningful, selected by Kind.
type Error struct {
	Kind ErrorKind

	ConnKind ConnectionSubKind
	QueryErr *QueryErrorInfo
	TypeInfo *TypeErrorInfo
	Validate *ValidationInfo

	Message string
	Source  error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindErrConnection:
		fmt.Fprintf(&b, "connection(%s): %s", e.ConnKind, e.Message)
	case KindErrProtocol:
		fmt.Fprintf(&b, "protocol: %s", e.Message)
	case KindErrQuery:
		if e.QueryErr != nil {
			fmt.Fprintf(&b, "query(%s): %s", e.QueryErr.SubKind, e.Message)
			if e.QueryErr.SQLState != "" {
				fmt.Fprintf(&b, " [%s]", e.QueryErr.SQLState)
			}
		} else {
			fmt.Fprintf(&b, "query: %s", e.Message)
		}
	case KindErrType:
		fmt.Fprintf(&b, "type: %s", e.Message)
	case KindErrValidation:
		fmt.Fprintf(&b, "validation")
		if e.Validate != nil && e.Validate.ModelName != "" {
			fmt.Fprintf(&b, "(%s)", e.Validate.ModelName)
		}
		fmt.Fprintf(&b, ": %d violation(s)", e.violationCount())
	default:
		fmt.Fprintf(&b, "%s", e.Message)
	}
	if e.Source != nil {
		fmt.Fprintf(&b, ": %v", e.Source)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Source }

func (e *Error) violationCount() int {
	if e.Validate == nil {
		return 0
	}
	return len(e.Validate.Fields) + len(e.Validate.ModelLevel)
}

// Is supports errors.Is comparisons against another *Error by Kind (and,
// when populated, by SubKind); Message/Source are ignored for matching
// the same way lib-pq's ErrorCode comparisons ignore Severity/Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	switch e.Kind {
	case KindErrConnection:
		return t.ConnKind == e.ConnKind
	case KindErrQuery:
		if t.QueryErr == nil || e.QueryErr == nil {
			return true
		}
		return t.QueryErr.SubKind == e.QueryErr.SubKind
	default:
		return true
	}
}

func newConnError(sub ConnectionSubKind, msg string, src error) *Error {
	return &Error{Kind: KindErrConnection, ConnKind: sub, Message: msg, Source: src}
}

func newProtocolError(msg string, src error) *Error {
	return &Error{Kind: KindErrProtocol, Message: msg, Source: src}
}

func newQueryError(sub QuerySubKind, msg string, info *QueryErrorInfo) *Error {
	if info == nil {
		info = &QueryErrorInfo{}
	}
	info.SubKind = sub
	return &Error{Kind: KindErrQuery, QueryErr: info, Message: msg}
}

// NewConnectionError, NewProtocolError and NewQueryError are the exported
// constructors driver packages use to build taxonomy-conformant errors
// without importing internal helpers.
func NewConnectionError(sub ConnectionSubKind, msg string, src error) *Error {
	return newConnError(sub, msg, src)
}

func NewProtocolError(msg string, src error) *Error {
	return newProtocolError(msg, src)
}

func NewQueryError(sub QuerySubKind, msg string, info *QueryErrorInfo) *Error {
	return newQueryError(sub, msg, info)
}

func NewValidationError(modelName string, fields []FieldViolation, modelLevel []string) *Error {
	return &Error{
		Kind: KindErrValidation,
		Validate: &ValidationInfo{
			ModelName:  modelName,
			Fields:     fields,
			ModelLevel: modelLevel,
		},
		Message: "validation failed",
	}
}

func NewCustomError(msg string) *Error {
	return &Error{Kind: KindErrCustom, Message: msg}
}
