package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// CSVParser handles CSV files. The header row is kept; every data row
// becomes a paragraph of "header: cell" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	root := mdast.Parent(mdast.TypeRoot)
	if len(records) == 0 {
		return root, nil
	}

	headers := records[0]
	for _, row := range records[1:] {
		var text strings.Builder
		for j, cell := range row {
			if j > 0 {
				text.WriteString(", ")
			}
			if j < len(headers) && headers[j] != "" {
				text.WriteString(headers[j] + ": ")
			}
			text.WriteString(cell)
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		root.Children = append(root.Children, paragraph(text.String()))
	}
	return root, nil
}
