package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/xrefmend/internal/mdast"
)

// JSONParser reads a tree that was already serialised as mdast JSON.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*mdast.Node, error) {
	var root mdast.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode mdast json: %w", err)
	}
	if err := mdast.Validate(&root); err != nil {
		return nil, fmt.Errorf("decode mdast json: %w", err)
	}
	return &root, nil
}
