package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Parser is responsible for converting a raw scenario document into a Graph.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a JSON scenario document with top-level "blocks" and "connections".
func (p *Parser) Parse(data []byte) (*domain.Graph, error) {
	var graph domain.Graph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
	}
	if err := p.Check(&graph); err != nil {
		return nil, err
	}
	return p.Normalize(&graph), nil
}

// Check rejects documents the interpreter cannot address.
func (p *Parser) Check(graph *domain.Graph) error {
	for i, b := range graph.Blocks {
		if b.ID == "" {
			return fmt.Errorf("%w: block #%d missing id", domain.ErrInvalidScenario, i)
		}
	}
	for i, c := range graph.Connections {
		if c.From.BlockID == "" || c.From.Point == "" || c.To.BlockID == "" {
			return fmt.Errorf("%w: connection #%d is incomplete", domain.ErrInvalidScenario, i)
		}
	}
	return nil
}

// Normalize rewrites legacy delay exits. Authoring tools label the delay handle "next",
// while delay blocks exit through "completed"; a delay without an explicit
// "completed" connection has its "next" connections relabeled.
func (p *Parser) Normalize(graph *domain.Graph) *domain.Graph {
	delays := make(map[string]bool)
	for _, b := range graph.Blocks {
		if b.Type == domain.BlockDelay {
			delays[b.ID] = true
		}
	}
	for _, c := range graph.Connections {
		if delays[c.From.BlockID] && c.From.Point == domain.PointCompleted {
			delete(delays, c.From.BlockID)
		}
	}
	for i, c := range graph.Connections {
		if delays[c.From.BlockID] && c.From.Point == domain.PointNext {
			graph.Connections[i].From.Point = domain.PointCompleted
		}
	}
	if graph.Blocks == nil {
		graph.Blocks = []domain.Block{}
	}
	if graph.Connections == nil {
		graph.Connections = []domain.Connection{}
	}
	return graph
}
