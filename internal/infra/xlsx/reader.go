// Package xlsx reads matching sets and lexicon rows from Excel workbooks.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/lookup"
)

// RowError reports a row that could not be imported. Row is 1-based as shown
// in a spreadsheet.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Header aliases, lower-cased. Lexicon exports use the Korean headers.
var (
	setColumns = map[string][]string{
		"id":      {"id", "번호"},
		"word":    {"word", "단어", "어휘"},
		"meaning": {"meaning", "뜻", "의미"},
	}
	lexiconColumns = map[string][]string{
		"id":      {"id", "전체 번호"},
		"grade":   {"grade", "등급"},
		"text":    {"text", "word", "어휘", "대표형"},
		"pos":     {"pos", "품사", "분류"},
		"desc":    {"desc", "description", "길잡이말"},
		"meaning": {"meaning", "의미"},
		"related": {"related", "관련형"},
	}
)

// ReadSet reads id|word|meaning rows from the first sheet. The first row is a
// header. Rows with an empty id get their 1-based data row number.
func ReadSet(r io.Reader, setID string) (domain.MatchingSet, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return domain.MatchingSet{}, err
	}
	cols, err := columns(rows[0], setColumns, "word", "meaning")
	if err != nil {
		return domain.MatchingSet{}, err
	}

	set := domain.MatchingSet{ID: setID}
	for i, row := range rows[1:] {
		word := cell(row, cols, "word")
		meaning := cell(row, cols, "meaning")
		if word == "" && meaning == "" {
			continue
		}
		id := cell(row, cols, "id")
		if id == "" {
			id = fmt.Sprint(i + 1)
		}
		set.Items = append(set.Items, domain.SetItem{ID: id, LeftText: word, RightText: meaning})
	}
	return set, nil
}

// ReadLexicon reads lexicon rows of the given kind (lookup.TypeWord or
// lookup.TypeGrammar) from the first sheet.
func ReadLexicon(r io.Reader, kind string) ([]lookup.Entry, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return nil, err
	}
	cols, err := columns(rows[0], lexiconColumns, "id", "text")
	if err != nil {
		return nil, err
	}

	var (
		entries []lookup.Entry
		bad     []error
	)
	for i, row := range rows[1:] {
		e := lookup.Entry{
			ID:      cell(row, cols, "id"),
			Kind:    kind,
			Text:    cell(row, cols, "text"),
			Pos:     cell(row, cols, "pos"),
			Desc:    cell(row, cols, "desc"),
			Meaning: cell(row, cols, "meaning"),
			Related: lookup.SplitRelated(cell(row, cols, "related")),
			Grade:   cell(row, cols, "grade"),
		}
		if e.ID == "" && e.Text == "" {
			continue
		}
		if e.ID == "" || e.Text == "" {
			bad = append(bad, RowError{Row: i + 2, Message: "id and text are required"})
			continue
		}
		e.ID = kind + ":" + e.ID
		entries = append(entries, e)
	}
	if len(bad) > 0 {
		return entries, fmt.Errorf("read lexicon: %w", errors.Join(bad...))
	}
	return entries, nil
}

func firstSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("excel must have header row and at least one data row")
	}
	return rows, nil
}

func columns(header []string, aliases map[string][]string, required ...string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int, len(aliases))
	for name, names := range aliases {
		for _, alias := range names {
			if i, ok := byName[alias]; ok {
				cols[name] = i
				break
			}
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}
	return cols, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
