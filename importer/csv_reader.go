package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVScanner reads delimited text with a header row. UTF-8 (with or without
// BOM) and BOM-marked UTF-16 input are accepted.
type CSVScanner struct {
	reader *csv.Reader
	header []string
	errs   []ParseError
	rows   int
	done   bool
}

func NewCSVScanner(r io.Reader, options ParseOptions) *CSVScanner {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(r, decoder))
	reader.Comma = options.delimiter()
	reader.FieldsPerRecord = -1

	s := &CSVScanner{reader: reader}
	s.readHeader()
	return s
}

func (s *CSVScanner) readHeader() {
	for {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.fail(ParseError{Line: 1, Message: "File is empty or has no header row"})
			return
		}
		if err != nil {
			s.fail(parseErrorFrom(err, 1))
			return
		}
		if isBlankRecord(record) {
			continue
		}

		s.header = make([]string, len(record))
		for i, value := range record {
			s.header[i] = cleanHeader(value)
		}
		return
	}
}

func (s *CSVScanner) Header() []string {
	return append([]string(nil), s.header...)
}

func (s *CSVScanner) Errors() []ParseError {
	return append([]ParseError(nil), s.errs...)
}

func (s *CSVScanner) Next() (Row, bool) {
	for !s.done {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			break
		}
		if err != nil {
			s.fail(parseErrorFrom(err, s.rows+2))
			break
		}
		if isBlankRecord(record) {
			continue
		}

		s.rows++
		line := s.rows + 1
		switch {
		case len(record) < len(s.header):
			s.errs = append(s.errs, ParseError{
				Line:    line,
				Message: fmt.Sprintf("Too few fields: expected %d fields but parsed %d", len(s.header), len(record)),
			})
			continue
		case len(record) > len(s.header):
			s.errs = append(s.errs, ParseError{
				Line:    line,
				Message: fmt.Sprintf("Too many fields: expected %d fields but parsed %d", len(s.header), len(record)),
			})
			continue
		}

		values := make(map[string]string, len(s.header))
		for i, column := range s.header {
			values[column] = record[i]
		}
		return Row{Line: line, Values: values}, true
	}
	return Row{}, false
}

func (s *CSVScanner) fail(parseErr ParseError) {
	s.errs = append(s.errs, parseErr)
	s.done = true
}

// parseErrorFrom reports err at the logical line, which skips blank lines the
// same way row numbering does.
func parseErrorFrom(err error, line int) ParseError {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return ParseError{Line: line, Message: csvErr.Err.Error()}
	}
	return ParseError{Line: line, Message: err.Error()}
}
