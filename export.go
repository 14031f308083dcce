package cadastre

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// tableSchema builds the Arrow schema of t: one field per column, in column order,
// with the table name stored under the "table" metadata key.
func tableSchema(t Table, cols []Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		var dt arrow.DataType
		switch c.Kind {
		case IntColumn:
			dt = arrow.PrimitiveTypes.Int64
		case FloatColumn:
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt}
	}
	md := arrow.NewMetadata([]string{"table"}, []string{t.Name()})
	return arrow.NewSchema(fields, &md)
}

// WriteArrow writes t as an Arrow IPC file holding a single record batch.
// An empty table produces a file with the schema and no rows.
func WriteArrow(w io.Writer, t Table) error {
	mem := memory.NewGoAllocator()
	cols := t.Columns()
	schema := tableSchema(t, cols)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, c := range cols {
		switch c.Kind {
		case IntColumn:
			fb := b.Field(i).(*array.Int64Builder)
			for _, v := range c.Ints {
				fb.Append(int64(v))
			}
		case FloatColumn:
			b.Field(i).(*array.Float64Builder).AppendValues(c.Floats, nil)
		default:
			b.Field(i).(*array.StringBuilder).AppendValues(c.Strings, nil)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// WriteArrowDir writes every table as <dir>/<name>.arrow and returns the paths.
func WriteArrowDir(dir string, tables ...Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, strings.ToLower(t.Name())+".arrow")
		file, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		werr := WriteArrow(file, t)
		cerr := file.Close()
		if werr != nil {
			return paths, fmt.Errorf("write %s: %w", path, werr)
		}
		if cerr != nil {
			return paths, cerr
		}
		paths = append(paths, path)
	}
	return paths, nil
}
