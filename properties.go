package cadastre

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

func (t FieldType) columnType() flattypes.ColumnType {
	switch t {
	case FieldInt:
		return flattypes.ColumnTypeLong
	case FieldDouble:
		return flattypes.ColumnTypeDouble
	default:
		return flattypes.ColumnTypeString
	}
}

// fieldType maps a stored column type back to a layer field type.
func fieldType(t flattypes.ColumnType) (FieldType, error) {
	switch t {
	case flattypes.ColumnTypeString, flattypes.ColumnTypeDateTime, flattypes.ColumnTypeJson:
		return FieldString, nil
	case flattypes.ColumnTypeByte, flattypes.ColumnTypeUByte, flattypes.ColumnTypeShort,
		flattypes.ColumnTypeUShort, flattypes.ColumnTypeInt, flattypes.ColumnTypeUInt,
		flattypes.ColumnTypeLong, flattypes.ColumnTypeULong, flattypes.ColumnTypeBool:
		return FieldInt, nil
	case flattypes.ColumnTypeFloat, flattypes.ColumnTypeDouble:
		return FieldDouble, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidColumn, flattypes.EnumNamesColumnType[t])
}

// buildColumns creates the header columns for the layer fields, in field order.
func buildColumns(fields []Field, builder *flatbuffers.Builder) []*writer.Column {
	columns := make([]*writer.Column, 0, len(fields))
	for _, f := range fields {
		col := writer.NewColumn(builder)
		col.SetName(f.Name)
		col.SetTitle(f.Name) // title matches name for JS library compatibility
		col.SetType(f.Type.columnType())
		col.SetNullable(true)
		columns = append(columns, col)
	}
	return columns
}

// encodeProperties encodes feature properties in field order. Each value is
// written as [2-byte column index][value bytes]; missing values are skipped.
func encodeProperties(props geojson.Properties, fields []Field) ([]byte, error) {
	if len(props) == 0 || len(fields) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	for i, f := range fields {
		value, ok := props[f.Name]
		if !ok || value == nil {
			continue
		}

		_ = binary.Write(&buf, binary.LittleEndian, uint16(i))

		switch f.Type {
		case FieldInt:
			v, ok := toInt64(value)
			if !ok {
				return nil, fmt.Errorf("%w: %s is %T", ErrInvalidColumn, f.Name, value)
			}
			_ = binary.Write(&buf, binary.LittleEndian, v)
		case FieldDouble:
			v, ok := toFloat64(value)
			if !ok {
				return nil, fmt.Errorf("%w: %s is %T", ErrInvalidColumn, f.Name, value)
			}
			_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		default:
			s := toString(value)
			_ = binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
			buf.WriteString(s)
		}
	}
	return buf.Bytes(), nil
}

// decodeProperties decodes FlatGeobuf binary properties using the header schema.
func decodeProperties(data []byte, header *flattypes.Header) geojson.Properties {
	if len(data) == 0 || header == nil {
		return nil
	}

	props := make(geojson.Properties)
	offset := 0

	for offset+2 <= len(data) {
		colIndex := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2

		var col flattypes.Column
		if colIndex >= header.ColumnsLength() || !header.Columns(&col, colIndex) {
			break
		}

		value, n := readPropertyValue(data[offset:], col.Type())
		if n == 0 {
			break
		}
		offset += n
		props[string(col.Name())] = value
	}

	return props
}

// readPropertyValue reads one value of the given column type and returns it with
// the number of bytes consumed. Zero bytes means the data is truncated or the
// type is unsupported.
func readPropertyValue(data []byte, colType flattypes.ColumnType) (interface{}, int) {
	need := func(n int) bool { return len(data) >= n }

	switch colType {
	case flattypes.ColumnTypeBool:
		if !need(1) {
			return nil, 0
		}
		return data[0] != 0, 1
	case flattypes.ColumnTypeByte:
		if !need(1) {
			return nil, 0
		}
		return int64(int8(data[0])), 1
	case flattypes.ColumnTypeUByte:
		if !need(1) {
			return nil, 0
		}
		return int64(data[0]), 1
	case flattypes.ColumnTypeShort:
		if !need(2) {
			return nil, 0
		}
		return int64(int16(binary.LittleEndian.Uint16(data))), 2
	case flattypes.ColumnTypeUShort:
		if !need(2) {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint16(data)), 2
	case flattypes.ColumnTypeInt:
		if !need(4) {
			return nil, 0
		}
		return int64(int32(binary.LittleEndian.Uint32(data))), 4
	case flattypes.ColumnTypeUInt:
		if !need(4) {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint32(data)), 4
	case flattypes.ColumnTypeLong:
		if !need(8) {
			return nil, 0
		}
		return int64(binary.LittleEndian.Uint64(data)), 8
	case flattypes.ColumnTypeULong:
		if !need(8) {
			return nil, 0
		}
		return binary.LittleEndian.Uint64(data), 8
	case flattypes.ColumnTypeFloat:
		if !need(4) {
			return nil, 0
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), 4
	case flattypes.ColumnTypeDouble:
		if !need(8) {
			return nil, 0
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), 8
	case flattypes.ColumnTypeString, flattypes.ColumnTypeDateTime, flattypes.ColumnTypeJson:
		if !need(4) {
			return nil, 0
		}
		n := int(binary.LittleEndian.Uint32(data))
		if !need(4 + n) {
			return nil, 0
		}
		return string(data[4 : 4+n]), 4 + n
	default:
		return nil, 0
	}
}

// Property values arrive from GeoJSON decoding or from Go callers, so numbers
// may be any integer or float type or json.Number.

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
