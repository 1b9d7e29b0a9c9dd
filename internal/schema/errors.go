package schema

import "errors"

var ErrNilDataset = errors.New("schema: Nil dataset service")

type UnknownSchemaError string

func (e UnknownSchemaError) Error() string {
	return "schema: Unknown schema " + string(e)
}
