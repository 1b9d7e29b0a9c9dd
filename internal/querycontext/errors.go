package querycontext

import "errors"

var (
	ErrNilConfig   = errors.New("querycontext: Nil config")
	ErrNilCache    = errors.New("querycontext: Nil response cache")
	ErrNilResolver = errors.New("querycontext: Nil address resolver")
	ErrNilDataset  = errors.New("querycontext: Nil dataset service")
	ErrNoPrimary   = errors.New("querycontext: Primary query not executed")
)

type UnknownSessionError string

func (e UnknownSessionError) Error() string {
	return "querycontext: Unknown session " + string(e)
}
