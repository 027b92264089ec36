// Package parquetio reads and writes Frames as Parquet files.
package parquetio

import (
	"encoding/json"
	"fmt"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

func parquetSchemaJSON(s ds.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case ds.KindFloat:
			tag += "DOUBLE"
		case ds.KindInt:
			tag += "INT64"
		case ds.KindBool:
			tag += "BOOLEAN"
		default:
			// times are stored as RFC 3339 strings
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
func WriteAll(path string, f *ds.Frame) (err error) {
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := writer.WriteStop(); serr != nil && err == nil {
			err = fmt.Errorf("parquet write stop: %w", serr)
		}
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	cols := f.Columns()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			switch v := c.Value(r).(type) {
			case nil:
			case time.Time:
				rec[c.Name()] = v.Format(time.RFC3339Nano)
			default:
				rec[c.Name()] = v
			}
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(line)); err != nil {
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	return nil
}
