package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobonovski/gohdp/util"
)

var scenarioDocs = [][]uint32{{0, 1, 2, 3}, {0, 1, 4, 5}, {0, 1, 5, 6}}

func testConfig(vocabSize int) Config {
	cfg := DefaultConfig()
	cfg.VocabSize = vocabSize
	return cfg
}

func newTestState(t *testing.T, docs [][]uint32, cfg Config) *State {
	s, err := NewState(docs, cfg, nil)
	require.NoError(t, err)
	return s
}

// recovers the InvariantError raised by f
func requireViolation(t *testing.T, f func()) *InvariantError {
	var got *InvariantError
	func() {
		defer func() {
			if r := recover(); r != nil {
				got, _ = r.(*InvariantError)
			}
		}()
		f()
	}()
	require.NotNil(t, got, "expected an invariant violation")
	return got
}

type countSnapshot struct {
	tableCount  []int
	wordTotal   []float64
	wordCount   []map[uint32]float64
	totalTables int
	docCount    [][]int
	docWords    []map[TableID]map[uint32]int
}

func snapshot(s *State) countSnapshot {
	snap := countSnapshot{
		tableCount:  append([]int(nil), s.tableCount...),
		wordTotal:   append([]float64(nil), s.wordTotal...),
		totalTables: s.totalTables,
	}
	for _, dd := range s.wordCount {
		m := make(map[uint32]float64)
		if dd != nil {
			for _, v := range dd.Keys() {
				m[v] = dd.Get(v)
			}
		}
		snap.wordCount = append(snap.wordCount, m)
	}
	for _, d := range s.docs {
		snap.docCount = append(snap.docCount, append([]int(nil), d.count...))
		words := make(map[TableID]map[uint32]int)
		for _, tb := range d.tableIDs()[1:] {
			words[tb] = make(map[uint32]int)
			for v, c := range d.wordCount[tb] {
				words[tb][v] = c
			}
		}
		snap.docWords = append(snap.docWords, words)
	}
	return snap
}

func TestNewStateScenario(t *testing.T) {
	s := newTestState(t, scenarioDocs, testConfig(7))

	assert.Equal(t, 3, s.NumDocs())
	assert.Equal(t, 0, s.NumTopics())
	assert.Equal(t, []DishID{NewDish}, s.Dishes())
	for j := range scenarioDocs {
		assert.Equal(t, []TableID{NewTable}, s.Tables(j))
		assert.Equal(t, 0, s.NumTables(j))
	}
	assert.Equal(t, [][]uint32{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, s.TableAssignments())
	assert.Equal(t, 0, s.TotalTables())
	assert.NoError(t, s.Check())
}

func TestNewStateInvalidConfig(t *testing.T) {
	cases := map[string]struct {
		docs [][]uint32
		cfg  func(*Config)
	}{
		"no documents":   {docs: nil, cfg: func(c *Config) {}},
		"zero vocab":     {docs: scenarioDocs, cfg: func(c *Config) { c.VocabSize = 0 }},
		"word too large": {docs: [][]uint32{{0, 7}}, cfg: func(c *Config) {}},
		"zero alpha":     {docs: scenarioDocs, cfg: func(c *Config) { c.Alpha = 0 }},
		"negative beta":  {docs: scenarioDocs, cfg: func(c *Config) { c.Beta = -1 }},
		"zero gamma":     {docs: scenarioDocs, cfg: func(c *Config) { c.Gamma = 0 }},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(7)
			tc.cfg(&cfg)
			_, err := NewState(tc.docs, cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestCreateTableAndDish(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 1, 1}}, testConfig(2))
	cfg := testConfig(2)

	k := s.createDish()
	assert.Equal(t, DishID(1), k)
	assert.Equal(t, cfg.Beta*2, s.wordTotal[k])
	assert.Equal(t, 0, s.tableCount[k])

	tb := s.createTable(0, k)
	assert.Equal(t, TableID(1), tb)
	assert.Equal(t, 1, s.tableCount[k])
	assert.Equal(t, 1, s.TotalTables())

	s.attach(0, tb, 0)
	s.attach(0, tb, 2)
	assert.Equal(t, 2, s.docs[0].count[tb])
	assert.Equal(t, cfg.Beta*2+2, s.wordTotal[k])
	assert.Equal(t, cfg.Beta+1, s.wordCount[k].Get(1))
	assert.Equal(t, [][]uint32{{1, 0, 1}}, s.TableAssignments())
	assert.Equal(t, []map[uint32]uint32{{1: 1}}, s.DishAssignments())
	assert.NoError(t, s.Check())
}

func TestDetachAttachRoundTrip(t *testing.T) {
	cfg := testConfig(3)
	cfg.Beta = 0.5
	s := newTestState(t, [][]uint32{{0, 1, 1, 2}}, cfg)
	k := s.createDish()
	tb := s.createTable(0, k)
	for i := 0; i < 4; i += 1 {
		s.attach(0, tb, i)
	}
	before := snapshot(s)

	s.detach(0, 2)
	assert.Equal(t, NewTable, s.docs[0].seat[2])
	assert.Equal(t, 3, s.docs[0].count[tb])
	s.attach(0, tb, 2)

	assert.Equal(t, before, snapshot(s))
	assert.NoError(t, s.Check())
}

func TestDetachUnseatedIsNoop(t *testing.T) {
	s := newTestState(t, scenarioDocs, testConfig(7))
	before := snapshot(s)
	s.detach(1, 3)
	assert.Equal(t, before, snapshot(s))
}

func TestDetachCascadesToDish(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 1}, {1}}, testConfig(2))
	k1 := s.createDish()
	k2 := s.createDish()
	t1 := s.createTable(0, k1)
	t2 := s.createTable(0, k2)
	t3 := s.createTable(1, k2)
	s.attach(0, t1, 0)
	s.attach(0, t2, 1)
	s.attach(1, t3, 0)
	require.NoError(t, s.Check())

	// the only table of dish 1 empties, both go away
	s.detach(0, 0)
	assert.Equal(t, []TableID{NewTable, t2}, s.Tables(0))
	assert.Equal(t, []DishID{NewDish, k2}, s.Dishes())
	assert.Equal(t, 2, s.TotalTables())
	assert.NoError(t, s.Check())

	// dish 2 still serves a table in document 1
	s.detach(0, 1)
	assert.Equal(t, []TableID{NewTable}, s.Tables(0))
	assert.Equal(t, []DishID{NewDish, k2}, s.Dishes())
	assert.Equal(t, 1, s.tableCount[k2])
	assert.NoError(t, s.Check())
}

func TestIdsAreRecycledLowestFirst(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 1, 2}}, testConfig(3))
	for i := 0; i < 3; i += 1 {
		k := s.createDish()
		tb := s.createTable(0, k)
		s.attach(0, tb, i)
	}
	s.detach(0, 1)
	s.detach(0, 0)
	assert.Equal(t, []TableID{NewTable, 3}, s.Tables(0))
	assert.Equal(t, []DishID{NewDish, 3}, s.Dishes())

	k := s.createDish()
	assert.Equal(t, DishID(1), k)
	assert.Equal(t, TableID(1), s.createTable(0, k))
	k = s.createDish()
	assert.Equal(t, DishID(2), k)
	assert.Equal(t, TableID(2), s.createTable(0, k))
	assert.Equal(t, DishID(4), s.createDish())
}

func TestLeaveDishKeepsSurvivingDish(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 0}, {0, 1}}, testConfig(2))
	k := s.createDish()
	t0 := s.createTable(0, k)
	t1 := s.createTable(1, k)
	s.attach(0, t0, 0)
	s.attach(0, t0, 1)
	s.attach(1, t1, 0)
	s.attach(1, t1, 1)
	before := snapshot(s)

	s.leaveDish(0, t0)
	assert.Equal(t, k, s.docs[0].dish[t0])
	assert.Equal(t, 1, s.tableCount[k])
	assert.Equal(t, 1, s.TotalTables())

	s.reseat(0, t0, k)
	assert.Equal(t, before, snapshot(s))
	assert.NoError(t, s.Check())
}

func TestLeaveDishDestroysLastDish(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 1}}, testConfig(2))
	k := s.createDish()
	tb := s.createTable(0, k)
	s.attach(0, tb, 0)
	s.attach(0, tb, 1)

	s.leaveDish(0, tb)
	assert.Equal(t, NewDish, s.docs[0].dish[tb])
	assert.Equal(t, 0, s.NumTopics())
	assert.Equal(t, 0, s.TotalTables())

	// the table keeps its words and seeds a fresh dish
	k = s.createDish()
	assert.Equal(t, DishID(1), k)
	s.reseat(0, tb, k)
	assert.Equal(t, 2, s.docs[0].count[tb])
	assert.Equal(t, s.beta*2+2, s.wordTotal[k])
	assert.NoError(t, s.Check())
}

func TestReseatMovesCounts(t *testing.T) {
	cfg := testConfig(2)
	cfg.Beta = 0.5
	s := newTestState(t, [][]uint32{{0, 0}, {0, 1}}, cfg)
	k1 := s.createDish()
	t0 := s.createTable(0, k1)
	t1 := s.createTable(1, k1)
	s.attach(0, t0, 0)
	s.attach(0, t0, 1)
	s.attach(1, t1, 0)
	s.attach(1, t1, 1)

	s.leaveDish(0, t0)
	k2 := s.createDish()
	s.reseat(0, t0, k2)

	assert.Equal(t, k2, s.docs[0].dish[t0])
	assert.Equal(t, 3.0, s.wordTotal[k1])
	assert.Equal(t, 3.0, s.wordTotal[k2])
	assert.Equal(t, 1.5, s.wordCount[k1].Get(0))
	assert.Equal(t, 2.5, s.wordCount[k2].Get(0))
	assert.Equal(t, 0.5, s.wordCount[k2].Get(1))
	assert.Equal(t, 2, s.TotalTables())
	assert.NoError(t, s.Check())
}

func TestPreconditionViolations(t *testing.T) {
	s := newTestState(t, scenarioDocs, testConfig(7))

	e := requireViolation(t, func() { s.attach(0, 3, 0) })
	assert.Equal(t, 0, e.Doc)
	assert.Equal(t, 3, e.Table)
	assert.Contains(t, e.Error(), "doc=0 table=3")

	e = requireViolation(t, func() { s.createTable(1, 5) })
	assert.Equal(t, 5, e.Dish)

	e = requireViolation(t, func() { s.detach(7, 0) })
	assert.Equal(t, 7, e.Doc)

	e = requireViolation(t, func() { s.detach(0, 9) })
	assert.Equal(t, 0, e.Doc)

	e = requireViolation(t, func() { s.mustBeProbability([]float64{0.2, 0.2}, 1, 2, "test") })
	assert.Equal(t, 1, e.Doc)
	assert.Equal(t, 2, e.Table)
}

func TestCheckDetectsCorruption(t *testing.T) {
	s := newTestState(t, [][]uint32{{0, 1}}, testConfig(2))
	k := s.createDish()
	tb := s.createTable(0, k)
	s.attach(0, tb, 0)
	require.NoError(t, s.Check())

	s.wordTotal[k] += 1
	err := s.Check()
	require.Error(t, err)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, int(k), ie.Dish)

	s.wordTotal[k] -= 1
	s.docs[0].count[tb] += 1
	assert.Error(t, s.Check())
}

func TestNewStateFromAssignments(t *testing.T) {
	docs := [][]uint32{{0, 1, 2, 3}, {0, 1, 4}, {0, 1, 5, 6}}
	tables := [][]uint32{{1, 2, 1, 2}, {1, 1, 1}, {3, 3, 3, 1}}
	dishes := [][]uint32{{0, 1, 2}, {0, 3}, {0, 1, 2, 1}}

	s, err := NewStateFromAssignments(docs, testConfig(7), tables, dishes, nil)
	require.NoError(t, err)

	assert.Len(t, s.TableAssignments(), len(docs))
	assert.Len(t, s.DishAssignments(), len(docs))
	assert.Equal(t, tables, s.TableAssignments())
	assert.Equal(t, []map[uint32]uint32{{1: 1, 2: 2}, {1: 3}, {1: 1, 3: 1}}, s.DishAssignments())
	assert.Equal(t, 3, s.NumTopics())
	assert.Equal(t, 2, s.NumTables(2))
	assert.Equal(t, 5, s.TotalTables())
	require.NoError(t, s.Check())

	// table 2 of the last document held no words and is the next free id
	assert.Equal(t, TableID(2), s.createTable(2, 1))
	assert.Equal(t, DishID(4), s.createDish())
}

func TestNewStateFromAssignmentsSweeps(t *testing.T) {
	docs := [][]uint32{{0, 1, 2, 3}, {0, 1, 4}, {0, 1, 5, 6}}
	tables := [][]uint32{{1, 2, 1, 2}, {1, 1, 1}, {3, 3, 3, 1}}
	dishes := [][]uint32{{0, 1, 2}, {0, 3}, {0, 1, 2, 1}}

	s, err := NewStateFromAssignments(docs, testConfig(7), tables, dishes, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i += 1 {
		s.Sweep()
		require.NoError(t, s.Check())
	}
}

func TestNewStateFromAssignmentsErrors(t *testing.T) {
	docs := [][]uint32{{0, 1}, {2}}
	cases := map[string]struct {
		tables [][]uint32
		dishes [][]uint32
	}{
		"missing document":   {tables: [][]uint32{{1, 1}}, dishes: [][]uint32{{0, 1}, {0, 1}}},
		"missing dish rows":  {tables: [][]uint32{{1, 1}, {1}}, dishes: [][]uint32{{0, 1}}},
		"word count":         {tables: [][]uint32{{1}, {1}}, dishes: [][]uint32{{0, 1}, {0, 1}}},
		"table beyond dish":  {tables: [][]uint32{{1, 2}, {1}}, dishes: [][]uint32{{0, 1}, {0, 1}}},
		"table without dish": {tables: [][]uint32{{1, 1}, {1}}, dishes: [][]uint32{{0, 0}, {0, 1}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewStateFromAssignments(docs, testConfig(3), tc.tables, tc.dishes, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewStateFromAssignmentsUnseatedWords(t *testing.T) {
	s, err := NewStateFromAssignments([][]uint32{{0, 1, 2}}, testConfig(3),
		[][]uint32{{0, 2, 0}}, [][]uint32{{0, 0, 4}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []TableID{NewTable, 2}, s.Tables(0))
	assert.Equal(t, []DishID{NewDish, 4}, s.Dishes())
	require.NoError(t, s.Check())

	s.Sweep()
	require.NoError(t, s.Check())
	assert.True(t, util.ValidProbability(s.DocTopicDistribution()[0]))
}
