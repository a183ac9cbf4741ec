package physical

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/value"
)

// DefaultBlockSize is the number of left rows held in memory per block
const DefaultBlockSize = 10000

// JoinOptions bound the memory a block hash join uses
type JoinOptions struct {
	// BlockSize is the number of left rows built into the hash table at once
	BlockSize int
	// ProbeLimit ends a probe batch once that many joined rows were
	// produced; 0 uses the size of the current block
	ProbeLimit int
	// UseTermsFilter pushes the block's key values to the right side as IN
	// lists before each probe
	UseTermsFilter bool
}

type joinPhase int

const (
	phaseBuild joinPhase = iota
	phaseProbe
	phaseUnmatchedLeft
	phaseUnmatchedRight
	phaseDone
)

// BlockHashJoin joins left and right by building a hash table over blocks of
// left rows and probing it with every right row. The right side is scanned
// once per block, restarted through Rescan, or buffered when it cannot be
// restarted. Joined rows carry the left columns followed by the right
// columns; the missing side of an unmatched row is NULL.
type BlockHashJoin struct {
	left     PhysicalPlan
	right    PhysicalPlan
	joinType logical.JoinType
	groups   []logical.KeyGroup
	residual expression.Expression
	opts     JoinOptions

	leftKeys  [][]expression.Expression
	rightKeys [][]expression.Expression
	bound     expression.Expression
	schema    expression.Schema
	names     []string
	termable  bool

	phase        joinPhase
	leftDone     bool
	rightUsed    bool
	rightRows    []expression.Row
	buffered     bool
	block        []expression.Row
	table        *hashIndex
	matchedLeft  []bool
	matchedRight []bool
	run          rowSource
	ordinal      int
	stamps       []int
	probes       int
	blocks       int
	cursor
}

// NewBlockHashJoin binds the key groups against each side and the residual
// condition against the joined row
func NewBlockHashJoin(left, right PhysicalPlan, joinType logical.JoinType, groups []logical.KeyGroup,
	residual expression.Expression, opts JoinOptions) (*BlockHashJoin, error) {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	j := &BlockHashJoin{
		left:     left,
		right:    right,
		joinType: joinType,
		groups:   groups,
		residual: residual,
		opts:     opts,
		schema:   append(append(expression.Schema{}, left.Schema()...), right.Schema()...),
	}
	j.names = j.schema.Names()
	j.cursor = newCursor(j.schema)

	j.termable = opts.UseTermsFilter && !joinType.KeepsUnmatchedRight() && len(groups) > 0
	if _, ok := rescannable(right); !ok {
		j.termable = false
	}
	for _, g := range groups {
		if len(g) == 0 {
			return nil, errors.AssertionFailedf("join key group without key pairs")
		}
		var lk, rk []expression.Expression
		for _, kp := range g {
			l, err := expression.Bind(kp.Left, left.Schema())
			if err != nil {
				return nil, errors.Wrap(err, "join left key")
			}
			r, err := expression.Bind(kp.Right, right.Schema())
			if err != nil {
				return nil, errors.Wrap(err, "join right key")
			}
			lk, rk = append(lk, l), append(rk, r)
			if _, ok := kp.Right.(*expression.Reference); !ok {
				j.termable = false
			}
		}
		j.leftKeys, j.rightKeys = append(j.leftKeys, lk), append(j.rightKeys, rk)
	}
	if residual != nil {
		b, err := expression.Bind(residual, j.schema)
		if err != nil {
			return nil, errors.Wrap(err, "join condition")
		}
		j.bound = b
	}
	return j, nil
}

// Estimate returns the cost of the join. No cost model exists yet.
func (j *BlockHashJoin) Estimate() Cost { return Cost{} }

func (j *BlockHashJoin) Children() []PhysicalPlan  { return []PhysicalPlan{j.left, j.right} }
func (j *BlockHashJoin) Schema() expression.Schema { return j.schema }

func (j *BlockHashJoin) HasNext() (bool, error) {
	for !j.more() && j.phase != phaseDone {
		j.rows, j.pos = j.rows[:0], 0
		if err := j.step(); err != nil {
			return false, err
		}
	}
	return j.more(), nil
}

func (j *BlockHashJoin) Next() (value.ExprValue, error) {
	if _, err := j.HasNext(); err != nil {
		return nil, err
	}
	return j.next("BlockHashJoin")
}

// step advances the state machine by one phase or one probe batch
func (j *BlockHashJoin) step() error {
	switch j.phase {
	case phaseBuild:
		if j.leftDone {
			if j.joinType.KeepsUnmatchedRight() {
				return j.startUnmatchedRight()
			}
			j.phase = phaseDone
			return nil
		}
		return j.build()
	case phaseProbe:
		return j.probeBatch()
	case phaseUnmatchedLeft:
		if j.joinType.KeepsUnmatchedLeft() {
			for i, row := range j.block {
				if !j.matchedLeft[i] {
					j.rows = append(j.rows, j.joined(row, nil))
				}
			}
		}
		j.block, j.table, j.matchedLeft = nil, nil, nil
		j.phase = phaseBuild
		return nil
	case phaseUnmatchedRight:
		return j.unmatchedRightBatch()
	}
	return nil
}

// build reads the next block of left rows into the hash table and starts a
// probe run over the right side
func (j *BlockHashJoin) build() error {
	j.block = j.block[:0]
	for len(j.block) < j.opts.BlockSize {
		row, err := pullRow(j.left)
		if err != nil {
			return err
		}
		if row == nil {
			j.leftDone = true
			break
		}
		j.block = append(j.block, row)
	}
	if len(j.block) == 0 {
		return nil
	}
	j.blocks++
	j.table = newHashIndex()
	j.matchedLeft = make([]bool, len(j.block))
	j.stamps = make([]int, len(j.block))
	j.probes = 0
	for i, row := range j.block {
		for g, exprs := range j.leftKeys {
			keys, err := groupKeys(g, exprs, row)
			if err != nil {
				return err
			}
			for _, k := range keys {
				j.table.add(k, i)
			}
		}
	}

	var extra expression.Expression
	if j.termable {
		var possible bool
		extra, possible = j.termsFilter()
		if !possible {
			log.V(1).Infof("join block %d of %d rows has no usable keys, skipping probe", j.blocks, len(j.block))
			j.phase = phaseUnmatchedLeft
			return nil
		}
	}
	log.V(1).Infof("join block %d built: %d rows, %d keys", j.blocks, len(j.block), j.table.size())
	run, err := j.openRight(extra)
	if err != nil {
		return err
	}
	j.run, j.ordinal = run, 0
	j.phase = phaseProbe
	return nil
}

func (j *BlockHashJoin) probeLimit() int {
	if j.opts.ProbeLimit > 0 {
		return j.opts.ProbeLimit
	}
	return len(j.block)
}

// probeBatch probes right rows until the batch holds probeLimit joined rows
// or the right side is exhausted. The run stays open for the next batch.
func (j *BlockHashJoin) probeBatch() error {
	limit := j.probeLimit()
	for len(j.rows) < limit {
		row, err := j.run.next()
		if err != nil {
			return err
		}
		if row == nil {
			j.run = nil
			j.phase = phaseUnmatchedLeft
			return nil
		}
		ordinal := j.ordinal
		j.ordinal++
		matches, err := j.lookup(row)
		if err != nil {
			return err
		}
		for _, i := range matches {
			out := j.joined(j.block[i], row)
			if j.bound != nil {
				v, err := j.bound.ValueOf(out)
				if err != nil {
					return err
				}
				if !expression.IsTrue(v) {
					continue
				}
			}
			j.matchedLeft[i] = true
			j.markRight(ordinal)
			j.rows = append(j.rows, out)
		}
	}
	return nil
}

// lookup returns the block ordinals matching a right row, once each, in
// left order
func (j *BlockHashJoin) lookup(row expression.Row) ([]int, error) {
	j.probes++
	var matches []int
	if len(j.rightKeys) == 0 {
		// no equality keys: every row of the block is a candidate
		for i := range j.block {
			matches = append(matches, i)
		}
		return matches, nil
	}
	for g, exprs := range j.rightKeys {
		keys, err := groupKeys(g, exprs, row)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			for _, i := range j.table.get(k) {
				if j.stamps[i] != j.probes {
					j.stamps[i] = j.probes
					matches = append(matches, i)
				}
			}
		}
	}
	sort.Ints(matches)
	return matches, nil
}

func (j *BlockHashJoin) markRight(ordinal int) {
	if !j.joinType.KeepsUnmatchedRight() {
		return
	}
	for len(j.matchedRight) <= ordinal {
		j.matchedRight = append(j.matchedRight, false)
	}
	j.matchedRight[ordinal] = true
}

func (j *BlockHashJoin) startUnmatchedRight() error {
	run, err := j.openRight(nil)
	if err != nil {
		return err
	}
	j.run, j.ordinal = run, 0
	j.phase = phaseUnmatchedRight
	return nil
}

// unmatchedRightBatch emits up to one block of right rows no left row matched
func (j *BlockHashJoin) unmatchedRightBatch() error {
	for len(j.rows) < j.opts.BlockSize {
		row, err := j.run.next()
		if err != nil {
			return err
		}
		if row == nil {
			j.run = nil
			j.phase = phaseDone
			return nil
		}
		ordinal := j.ordinal
		j.ordinal++
		if ordinal < len(j.matchedRight) && j.matchedRight[ordinal] {
			continue
		}
		j.rows = append(j.rows, j.joined(nil, row))
	}
	return nil
}

// joined concatenates a left and a right row; a nil side is NULL-filled
func (j *BlockHashJoin) joined(left, right expression.Row) expression.Row {
	lw := len(j.left.Schema())
	out := make(expression.Row, len(j.schema))
	for i := range out {
		out[i] = value.Null
	}
	copy(out, left)
	if right != nil {
		copy(out[lw:], right)
	}
	return out
}

// termsFilter builds the IN lists of the current block for the right side.
// It reports false when no left row of the block can match anything.
func (j *BlockHashJoin) termsFilter() (expression.Expression, bool) {
	var alternatives []expression.Expression
	for g, group := range j.groups {
		var terms []expression.Expression
		for k, kp := range group {
			seen := map[string]bool{}
			var vals []value.ExprValue
			for _, row := range j.block {
				v, err := j.leftKeys[g][k].ValueOf(row)
				if err != nil {
					// evaluation errors surface during the probe instead
					return nil, true
				}
				for _, el := range keyElements(v) {
					key := string(value.AppendKey(nil, el))
					if !seen[key] {
						seen[key] = true
						vals = append(vals, el)
					}
				}
			}
			if len(vals) == 0 {
				terms = nil
				break
			}
			terms = append(terms, expression.NewIn(kp.Right, vals))
		}
		if len(terms) > 0 {
			alternatives = append(alternatives, expression.AndOf(terms...))
		}
	}
	if len(alternatives) == 0 {
		return nil, false
	}
	return expression.OrOf(alternatives...), true
}

// openRight starts a run over the right side. The first run consumes the
// operator itself; later runs restart it, or replay the rows buffered by
// the first run when it cannot be restarted.
func (j *BlockHashJoin) openRight(extra expression.Expression) (rowSource, error) {
	if j.buffered {
		return &sliceSource{rows: j.rightRows}, nil
	}
	r, canRescan := rescannable(j.right)
	if !j.rightUsed && extra == nil {
		j.rightUsed = true
		if canRescan {
			return &planSource{plan: j.right}, nil
		}
		return j.bufferRight()
	}
	if !canRescan {
		return j.bufferRight()
	}
	j.rightUsed = true
	fresh, err := r.Rescan(extra)
	if err != nil {
		return nil, err
	}
	return &planSource{plan: fresh}, nil
}

func (j *BlockHashJoin) bufferRight() (rowSource, error) {
	for {
		row, err := pullRow(j.right)
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		j.rightRows = append(j.rightRows, row)
	}
	j.buffered = true
	log.V(1).Infof("join buffered %d right rows", len(j.rightRows))
	return &sliceSource{rows: j.rightRows}, nil
}

func (j *BlockHashJoin) Describe() Description {
	groups := make([]string, len(j.groups))
	for i, g := range j.groups {
		pairs := make([]string, len(g))
		for k, kp := range g {
			pairs[k] = kp.Left.String() + " = " + kp.Right.String()
		}
		groups[i] = strings.Join(pairs, " AND ")
	}
	params := []Param{
		{Key: "type", Value: j.joinType.String()},
		{Key: "keys", Value: "[" + strings.Join(groups, " OR ") + "]"},
		{Key: "blockSize", Value: strconv.Itoa(j.opts.BlockSize)},
		{Key: "termsFilter", Value: strconv.FormatBool(j.termable)},
	}
	if j.residual != nil {
		params = append(params, Param{Key: "condition", Value: j.residual.String()})
	}
	return Description{Name: "BlockHashJoin", Params: params}
}

// rowSource is one pass over the right side of a join
type rowSource interface {
	next() (expression.Row, error)
}

type planSource struct {
	plan PhysicalPlan
}

func (s *planSource) next() (expression.Row, error) { return pullRow(s.plan) }

type sliceSource struct {
	rows []expression.Row
	pos  int
}

func (s *sliceSource) next() (expression.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
