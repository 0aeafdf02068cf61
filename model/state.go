package model

import (
	"sort"

	"github.com/bobonovski/gohdp/table"
	"github.com/bobonovski/gohdp/util"
)

// TableID identifies a table inside one document. NewTable is the
// "draw a new table" slot and doubles as "not seated" for words.
type TableID uint32

// DishID identifies a topic shared by all documents. NewDish is the
// "draw a new dish" slot and doubles as "no dish" for tables.
type DishID uint32

const (
	NewTable = TableID(table.Reserved)
	NewDish  = DishID(table.Reserved)
)

func (t TableID) IsNew() bool { return t == NewTable }

func (k DishID) IsNew() bool { return k == NewDish }

// restaurant bookkeeping of a single document; slices are indexed by TableID
type document struct {
	words     []uint32
	seat      []TableID // table of each word
	tables    *table.Pool
	dish      []DishID
	count     []int            // words seated at each table
	wordCount []map[uint32]int // vocabulary id -> words seated at each table
}

func newDocument(words []uint32) *document {
	return &document{
		words:     words,
		seat:      make([]TableID, len(words)),
		tables:    table.NewPool(),
		dish:      []DishID{NewDish},
		count:     []int{0},
		wordCount: []map[uint32]int{nil},
	}
}

func (d *document) grow(t TableID) {
	for len(d.count) <= int(t) {
		d.dish = append(d.dish, NewDish)
		d.count = append(d.count, 0)
		d.wordCount = append(d.wordCount, nil)
	}
}

func (d *document) tableIDs() []TableID {
	ids := d.tables.Active()
	tables := make([]TableID, len(ids))
	for i, id := range ids {
		tables[i] = TableID(id)
	}
	return tables
}

// State is the Chinese restaurant franchise: per document tables, each
// serving one of the corpus wide dishes. Dish slices are indexed by DishID
// and hold pseudo counts: wordTotal starts at beta*V and every per-word
// counter at beta.
type State struct {
	alpha     float64
	beta      float64
	gamma     float64
	vocabSize int

	docs []*document

	dishes      *table.Pool
	tableCount  []int               // tables serving each dish
	wordTotal   []float64           // words served by each dish + beta*V
	wordCount   []*util.DefaultDict // words of each vocabulary id served + beta
	totalTables int

	rng Categorical
}

// NewState builds an empty franchise over docs: every word is unseated
// and only the reserved table and dish slots exist. A nil rng is replaced
// by a CategoricalSampler seeded with cfg.Seed.
func NewState(docs [][]uint32, cfg Config, rng Categorical) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, configError("corpus has no documents")
	}
	if cfg.VocabSize <= 0 {
		return nil, configError("vocabulary size must be positive, got %d", cfg.VocabSize)
	}
	for j, words := range docs {
		for i, v := range words {
			if int(v) >= cfg.VocabSize {
				return nil, configError("doc %d word %d: vocabulary id %d out of range [0, %d)",
					j, i, v, cfg.VocabSize)
			}
		}
	}
	if rng == nil {
		rng = NewCategoricalSampler(cfg.Seed)
	}

	s := &State{
		alpha:      cfg.Alpha,
		beta:       cfg.Beta,
		gamma:      cfg.Gamma,
		vocabSize:  cfg.VocabSize,
		docs:       make([]*document, len(docs)),
		dishes:     table.NewPool(),
		tableCount: []int{0},
		wordTotal:  []float64{cfg.Beta * float64(cfg.VocabSize)},
		wordCount:  []*util.DefaultDict{util.NewDefaultDict(cfg.Beta)},
		rng:        rng,
	}
	for j, words := range docs {
		s.docs[j] = newDocument(words)
	}
	return s, nil
}

// NewStateFromAssignments rebuilds a franchise from explicit seating.
// tableAssign[j][i] is the table of word i in document j (0 = unseated)
// and dishAssign[j][t] the dish served at table t, index 0 unused. Tables
// without words are not created.
func NewStateFromAssignments(docs [][]uint32, cfg Config,
	tableAssign [][]uint32, dishAssign [][]uint32, rng Categorical) (*State, error) {
	s, err := NewState(docs, cfg, rng)
	if err != nil {
		return nil, err
	}
	if len(tableAssign) != len(docs) {
		return nil, configError("%d table assignment rows for %d documents", len(tableAssign), len(docs))
	}
	if len(dishAssign) != len(docs) {
		return nil, configError("%d dish assignment rows for %d documents", len(dishAssign), len(docs))
	}

	for j, d := range s.docs {
		if len(tableAssign[j]) != len(d.words) {
			return nil, configError("doc %d: %d table assignments for %d words",
				j, len(tableAssign[j]), len(d.words))
		}
		used := make(map[uint32]bool)
		for _, t := range tableAssign[j] {
			if t != table.Reserved {
				used[t] = true
			}
		}
		tables := make([]uint32, 0, len(used))
		for t := range used {
			tables = append(tables, t)
		}
		sort.Slice(tables, func(a, b int) bool { return tables[a] < tables[b] })

		for _, t := range tables {
			if int(t) >= len(dishAssign[j]) {
				return nil, configError("doc %d: table %d has no dish assignment", j, t)
			}
			k := DishID(dishAssign[j][t])
			if k.IsNew() {
				return nil, configError("doc %d: table %d serves no dish", j, t)
			}
			if !s.dishes.Contains(uint32(k)) {
				if err := s.dishes.Claim(uint32(k)); err != nil {
					return nil, configError("doc %d: dish %d: %v", j, k, err)
				}
				s.openDish(k)
			}
			if err := d.tables.Claim(t); err != nil {
				return nil, configError("doc %d: table %d: %v", j, t, err)
			}
			s.openTable(j, TableID(t), k)
		}
		for i, t := range tableAssign[j] {
			if t != table.Reserved {
				s.attach(j, TableID(t), i)
			}
		}
	}
	return s, nil
}

func (s *State) doc(j int) *document {
	if j < 0 || j >= len(s.docs) {
		violation(j, -1, -1, "document index out of range [0, %d)", len(s.docs))
	}
	return s.docs[j]
}

func (s *State) checkTable(j int, t TableID) *document {
	d := s.doc(j)
	if t.IsNew() || !d.tables.Contains(uint32(t)) {
		violation(j, int(t), -1, "table is not active")
	}
	return d
}

func (s *State) checkDish(k DishID) {
	if k.IsNew() || !s.dishes.Contains(uint32(k)) {
		violation(-1, -1, int(k), "dish is not active")
	}
}

func (s *State) growDishes(k DishID) {
	for len(s.tableCount) <= int(k) {
		s.tableCount = append(s.tableCount, 0)
		s.wordTotal = append(s.wordTotal, 0)
		s.wordCount = append(s.wordCount, nil)
	}
}

// detach removes word i of document j from its table, destroying the
// table (and possibly its dish) when it becomes empty. Unseated words
// are left alone.
func (s *State) detach(j, i int) {
	d := s.doc(j)
	if i < 0 || i >= len(d.words) {
		violation(j, -1, -1, "word index %d out of range [0, %d)", i, len(d.words))
	}
	t := d.seat[i]
	if t.IsNew() {
		return
	}
	k := d.dish[t]
	if k.IsNew() {
		violation(j, int(t), -1, "seated table serves no dish")
	}
	v := d.words[i]

	d.seat[i] = NewTable
	d.count[t] -= 1
	d.wordCount[t][v] -= 1
	if d.count[t] < 0 || d.wordCount[t][v] < 0 {
		violation(j, int(t), int(k), "negative word count for vocabulary id %d", v)
	}
	if d.wordCount[t][v] == 0 {
		delete(d.wordCount[t], v)
	}
	s.wordTotal[k] -= 1
	s.wordCount[k].Decr(v, 1)

	if d.count[t] == 0 {
		s.destroyTable(j, t)
	}
}

// attach seats word i of document j at active table t.
func (s *State) attach(j int, t TableID, i int) {
	d := s.checkTable(j, t)
	if i < 0 || i >= len(d.words) {
		violation(j, int(t), -1, "word index %d out of range [0, %d)", i, len(d.words))
	}
	if !d.seat[i].IsNew() {
		violation(j, int(d.seat[i]), -1, "word %d is already seated", i)
	}
	k := d.dish[t]
	if k.IsNew() {
		violation(j, int(t), -1, "table serves no dish")
	}
	v := d.words[i]

	d.seat[i] = t
	d.count[t] += 1
	d.wordCount[t][v] += 1
	s.wordTotal[k] += 1
	s.wordCount[k].Incr(v, 1)
}

// createTable opens the lowest free table id of document j serving dish k.
func (s *State) createTable(j int, k DishID) TableID {
	d := s.doc(j)
	s.checkDish(k)
	t := TableID(d.tables.Alloc())
	s.openTable(j, t, k)
	return t
}

func (s *State) openTable(j int, t TableID, k DishID) {
	d := s.docs[j]
	d.grow(t)
	d.dish[t] = k
	d.count[t] = 0
	d.wordCount[t] = make(map[uint32]int)
	s.tableCount[k] += 1
	s.totalTables += 1
}

// createDish opens the lowest free dish id with pseudo counts only.
func (s *State) createDish() DishID {
	k := DishID(s.dishes.Alloc())
	s.openDish(k)
	return k
}

func (s *State) openDish(k DishID) {
	s.growDishes(k)
	s.tableCount[k] = 0
	s.wordTotal[k] = s.beta * float64(s.vocabSize)
	s.wordCount[k] = util.NewDefaultDict(s.beta)
}

// destroyTable closes table t of document j and releases its dish
// when no other table serves it.
func (s *State) destroyTable(j int, t TableID) {
	d := s.checkTable(j, t)
	k := d.dish[t]
	if k.IsNew() {
		violation(j, int(t), -1, "destroying a table that serves no dish")
	}
	if d.count[t] != 0 {
		violation(j, int(t), int(k), "destroying a table with %d seated words", d.count[t])
	}
	if err := d.tables.Release(uint32(t)); err != nil {
		violation(j, int(t), int(k), "release table: %v", err)
	}
	d.dish[t] = NewDish
	d.wordCount[t] = nil
	s.unserve(j, t, k)
}

// destroyDish closes dish k. Its counts are reset when the id is reused.
func (s *State) destroyDish(k DishID) {
	if err := s.dishes.Release(uint32(k)); err != nil {
		violation(-1, -1, int(k), "release dish: %v", err)
	}
	s.wordTotal[k] = 0
	s.wordCount[k] = nil
}

// unserve drops one table from dish k and reports whether the dish was
// destroyed as a result.
func (s *State) unserve(j int, t TableID, k DishID) bool {
	s.tableCount[k] -= 1
	s.totalTables -= 1
	if s.tableCount[k] < 0 || s.totalTables < 0 {
		violation(j, int(t), int(k), "negative table count")
	}
	if s.tableCount[k] == 0 {
		s.destroyDish(k)
		return true
	}
	return false
}

// leaveDish takes table t of document j away from its dish before the
// dish is resampled. The table keeps pointing at the dish unless the dish
// died, so that its words can still be moved off it by reseat.
func (s *State) leaveDish(j int, t TableID) {
	d := s.checkTable(j, t)
	k := d.dish[t]
	if k.IsNew() {
		violation(j, int(t), -1, "table serves no dish")
	}
	if s.unserve(j, t, k) {
		d.dish[t] = NewDish
	}
}

// reseat serves table t of document j with dish k, moving the words of
// the table from its previous dish when that dish is different.
func (s *State) reseat(j int, t TableID, k DishID) {
	d := s.checkTable(j, t)
	s.checkDish(k)

	s.totalTables += 1
	s.tableCount[k] += 1

	old := d.dish[t]
	if k == old {
		return
	}
	d.dish[t] = k
	n := float64(d.count[t])
	if !old.IsNew() {
		s.wordTotal[old] -= n
	}
	s.wordTotal[k] += n
	for v, c := range d.wordCount[t] {
		if !old.IsNew() {
			s.wordCount[old].Decr(v, float64(c))
		}
		s.wordCount[k].Incr(v, float64(c))
	}
}

func (s *State) NumDocs() int {
	return len(s.docs)
}

// number of active topics, the reserved dish excluded
func (s *State) NumTopics() int {
	return s.dishes.Len() - 1
}

// number of active tables of document j, the reserved table excluded
func (s *State) NumTables(j int) int {
	return s.doc(j).tables.Len() - 1
}

// total number of active tables in the corpus
func (s *State) TotalTables() int {
	return s.totalTables
}

func (s *State) VocabSize() int {
	return s.vocabSize
}

// Tables returns the active table ids of document j, NewTable first.
func (s *State) Tables(j int) []TableID {
	return s.doc(j).tableIDs()
}

// Dishes returns the active dish ids, NewDish first.
func (s *State) Dishes() []DishID {
	ids := s.dishes.Active()
	dishes := make([]DishID, len(ids))
	for i, id := range ids {
		dishes[i] = DishID(id)
	}
	return dishes
}

// TableAssignments returns the table of every word, 0 when unseated.
func (s *State) TableAssignments() [][]uint32 {
	out := make([][]uint32, len(s.docs))
	for j, d := range s.docs {
		out[j] = make([]uint32, len(d.seat))
		for i, t := range d.seat {
			out[j][i] = uint32(t)
		}
	}
	return out
}

// DishAssignments returns, per document, the dish of every active table.
func (s *State) DishAssignments() []map[uint32]uint32 {
	out := make([]map[uint32]uint32, len(s.docs))
	for j, d := range s.docs {
		out[j] = make(map[uint32]uint32)
		for _, t := range d.tableIDs()[1:] {
			out[j][uint32(t)] = uint32(d.dish[t])
		}
	}
	return out
}

// DishVectors returns the dish assignments as dense vectors indexed by
// table id, the layout NewStateFromAssignments expects.
func (s *State) DishVectors() [][]uint32 {
	out := make([][]uint32, len(s.docs))
	for j, d := range s.docs {
		tables := d.tableIDs()
		out[j] = make([]uint32, int(tables[len(tables)-1])+1)
		for _, t := range tables[1:] {
			out[j][t] = uint32(d.dish[t])
		}
	}
	return out
}
