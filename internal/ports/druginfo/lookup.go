package druginfo

import (
	"context"
	"errors"
)

// Info es la ficha pública normalizada de un fármaco.
type Info struct {
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Warnings     []string `json:"warnings"`
	Purpose      []string `json:"purpose"`
}

type Lookup interface {
	GetDrugInfo(ctx context.Context, name string) (Info, error)
}

type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindUpstream
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUpstream:
		return "upstream"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Sentinels para errors.Is; Error.Is compara por Kind.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrUpstream        = &Error{Kind: KindUpstream}
	ErrNetwork         = &Error{Kind: KindNetwork}
)

// Error es el error de un lookup. Msg es lo que ve el cliente de la API.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: cause}
}

func Network(msg string, cause error) *Error {
	return &Error{Kind: KindNetwork, Msg: msg, Err: cause}
}

// KindOf devuelve el Kind de err o 0 si no es un *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Result es lo que devuelve el servicio al pedir info externa:
// exactamente uno de Info o Err tiene valor.
type Result struct {
	Info Info
	Err  error
}

func (r Result) OK() bool { return r.Err == nil }
