package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Severity grades an issue. Errors make a scenario unusable; warnings
// describe authoring mistakes the interpreter tolerates.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding about a scenario.
type Issue struct {
	Severity Severity
	BlockID  string
	Message  string
}

func (i Issue) String() string {
	if i.BlockID == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: block %q: %s", i.Severity, i.BlockID, i.Message)
}

// Report collects the issues found in a scenario.
type Report struct {
	Issues []Issue
}

func (r *Report) add(sev Severity, blockID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, BlockID: blockID, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the issues of error severity.
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues of warning severity.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err folds the errors of the report into one error wrapping
// domain.ErrInvalidScenario, or returns nil when there are none.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidScenario, len(errs), strings.Join(lines, "\n- "))
}

// ValidateGraph checks a scenario for structural problems: duplicate or
// unknown blocks, start block count, dangling connections, unreachable
// blocks, loops that never wait for the participant, and buttons that lead
// nowhere.
func ValidateGraph(graph *domain.Graph) *Report {
	r := &Report{}
	if graph == nil {
		r.add(SeverityError, "", "scenario is empty")
		return r
	}

	blocks := make(map[string]domain.Block, len(graph.Blocks))
	starts := 0
	for _, b := range graph.Blocks {
		if _, dup := blocks[b.ID]; dup {
			r.add(SeverityError, b.ID, "duplicate block id")
			continue
		}
		blocks[b.ID] = b
		if !b.Type.Valid() {
			r.add(SeverityError, b.ID, "unknown block type %q", b.Type)
		}
		if b.Type == domain.BlockStart {
			starts++
		}
	}
	switch {
	case starts == 0:
		r.add(SeverityError, "", "scenario has no start block")
	case starts > 1:
		r.add(SeverityWarning, "", "scenario has %d start blocks, only the first is used", starts)
	}

	exits := make(map[string]map[string]bool)
	edges := make(map[string][]string)
	for _, c := range graph.Connections {
		if _, ok := blocks[c.From.BlockID]; !ok {
			r.add(SeverityWarning, c.From.BlockID, "connection leaves an unknown block")
			continue
		}
		if exits[c.From.BlockID] == nil {
			exits[c.From.BlockID] = make(map[string]bool)
		}
		if exits[c.From.BlockID][c.From.Point] {
			r.add(SeverityWarning, c.From.BlockID, "exit %q has several connections, the first declared wins", c.From.Point)
			continue
		}
		exits[c.From.BlockID][c.From.Point] = true
		if _, ok := blocks[c.To.BlockID]; !ok {
			r.add(SeverityWarning, c.From.BlockID, "exit %q points at missing block %q", c.From.Point, c.To.BlockID)
			continue
		}
		edges[c.From.BlockID] = append(edges[c.From.BlockID], c.To.BlockID)
	}

	for _, b := range graph.Blocks {
		if b.Type != domain.BlockMenu && b.Type != domain.BlockInputData {
			continue
		}
		for _, id := range buttonIDs(b) {
			if !exits[b.ID][id] {
				r.add(SeverityWarning, b.ID, "button %q has no connection", id)
			}
		}
	}

	if start, ok := graph.StartBlock(); ok {
		reached := reachable(start.ID, edges)
		for _, b := range graph.Blocks {
			if !reached[b.ID] && b.Type != domain.BlockStart {
				r.add(SeverityWarning, b.ID, "block is unreachable from the start block")
			}
		}
	}

	for _, cycle := range immediateCycles(graph, blocks) {
		r.add(SeverityWarning, cycle[0], "blocks %s loop without waiting for the participant", strings.Join(cycle, " -> "))
	}
	return r
}

func reachable(from string, edges map[string][]string) map[string]bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range edges[id] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// immediate reports whether a block always exits in the same invocation
// through the given point.
func immediate(b domain.Block, point string) bool {
	switch b.Type {
	case domain.BlockStart, domain.BlockMessage:
		return point == domain.PointNext
	case domain.BlockDelay:
		return point == domain.PointCompleted
	}
	return false
}

// immediateCycles finds loops made only of blocks that never suspend.
func immediateCycles(graph *domain.Graph, blocks map[string]domain.Block) [][]string {
	next := make(map[string]string)
	for _, c := range graph.Connections {
		b, ok := blocks[c.From.BlockID]
		if !ok || !immediate(b, c.From.Point) {
			continue
		}
		if _, ok := blocks[c.To.BlockID]; !ok {
			continue
		}
		if _, seen := next[b.ID]; !seen {
			next[b.ID] = c.To.BlockID
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int)
	var cycles [][]string

	ids := make([]string, 0, len(next))
	for id := range next {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var path []string
		cur := id
		closed := false
		for state[cur] == unvisited {
			state[cur] = onPath
			path = append(path, cur)
			n, ok := next[cur]
			if !ok {
				break
			}
			cur = n
			closed = state[cur] == onPath
		}
		if closed {
			for i, p := range path {
				if p == cur {
					cycles = append(cycles, append(append([]string{}, path[i:]...), cur))
					break
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return cycles
}

func buttonIDs(b domain.Block) []string {
	items, _ := b.Data["buttons"].([]any)
	var ids []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok || m["id"] == nil || m["text"] == nil {
			continue
		}
		ids = append(ids, fmt.Sprint(m["id"]))
		if len(ids) == domain.MaxButtons {
			break
		}
	}
	return ids
}
