package sql

type DataType int

const (
	NullType DataType = iota
	BooleanType
	StringType
	BytesType
	FloatType
	IntegerType
)

func (dt DataType) String() string {
	switch dt {
	case NullType:
		return "NULLTYPE"
	case BooleanType:
		return "BOOL"
	case StringType:
		return "TEXT"
	case BytesType:
		return "BYTES"
	case FloatType:
		return "DOUBLE"
	case IntegerType:
		return "INT"
	}

	return ""
}
