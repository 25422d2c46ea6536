package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// inline [label](#id) references are recognised.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	paragraphs, err := splitParagraphs(r)
	if err != nil {
		return nil, err
	}
	root := mdast.Parent(mdast.TypeRoot)
	for _, para := range paragraphs {
		root.Children = append(root.Children, paragraph(para))
	}
	return root, nil
}

func splitParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
