package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/columns"
)

var (
	ErrNoSheets = errors.New("workbook has no sheets")
	ErrNoHeader = errors.New("sheet has no header row")
)

var zipMagic = []byte("PK\x03\x04")

// Loader turns raw report bytes into a Table.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("sheet-loader")}
}

// Load parses data as an xlsx workbook, or as CSV when it is not a zip
// container, and returns the rows of the requested sheet.
func (l *Loader) Load(source string, data []byte, sheetName string) (*Table, error) {
	if len(data) == 0 {
		return Empty(source), nil
	}

	var rows [][]string
	var err error
	if bytes.HasPrefix(data, zipMagic) {
		rows, err = l.readWorkbook(source, data, sheetName)
	} else {
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	return buildTable(source, rows)
}

func (l *Loader) readWorkbook(source string, data []byte, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.Warn("close workbook", zap.String("source", source), zap.Error(cerr))
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	chosen := sheets[0]
	if sheetName != "" {
		if m := columns.Resolve(sheetName, sheets); m.Found {
			chosen = m.Header
		} else {
			l.logger.Warn("configured sheet not found, using first sheet",
				zap.String("source", source),
				zap.String("wanted", sheetName),
				zap.String("using", chosen),
				zap.Strings("available", sheets))
		}
	}

	rows, err := f.GetRows(chosen)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", chosen, err)
	}

	l.logger.Debug("sheet read",
		zap.String("source", source),
		zap.String("sheet", chosen),
		zap.Int("rows", len(rows)))

	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if sep := sniffSeparator(data); sep != ',' {
		r.Comma = sep
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffSeparator picks ';' when the first line uses it more than ','.
func sniffSeparator(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func buildTable(source string, rows [][]string) (*Table, error) {
	blank := func(row []string) bool {
		return lo.EveryBy(row, func(c string) bool { return strings.TrimSpace(c) == "" })
	}

	_, headerAt, found := lo.FindIndexOf(rows, func(row []string) bool { return !blank(row) })
	if !found {
		return nil, ErrNoHeader
	}

	headers := lo.Map(rows[headerAt], func(h string, _ int) string { return strings.TrimSpace(h) })

	t := &Table{Source: source, Headers: headers}
	for _, row := range rows[headerAt+1:] {
		if blank(row) {
			continue
		}
		padded := make([]string, len(headers))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t, nil
}
