package model

import "math"

const countTolerance = 1e-2

// Check recounts the whole franchise from the seating and compares it
// with the maintained counters. It is too slow for the sampling loop and
// meant for tests and debugging.
func (s *State) Check() error {
	dishTables := make([]int, len(s.tableCount))
	dishWords := make([]float64, len(s.tableCount))
	totalTables := 0

	for j, d := range s.docs {
		seated := make([]int, len(d.count))
		for i, t := range d.seat {
			if t.IsNew() {
				continue
			}
			if !d.tables.Contains(uint32(t)) {
				return &InvariantError{j, int(t), -1, "word seated at an inactive table"}
			}
			seated[t] += 1
			if d.words[i] >= uint32(s.vocabSize) {
				return &InvariantError{j, int(t), -1, "vocabulary id out of range"}
			}
		}
		for id := 1; id < len(d.count); id += 1 {
			t := TableID(id)
			active := d.tables.Contains(uint32(t))
			if !active {
				if d.count[t] != 0 || seated[t] != 0 {
					return &InvariantError{j, id, -1, "inactive table holds words"}
				}
				continue
			}
			if d.count[t] <= 0 {
				return &InvariantError{j, id, int(d.dish[t]), "active table holds no words"}
			}
			if d.count[t] != seated[t] {
				return &InvariantError{j, id, int(d.dish[t]), "table word count differs from seating"}
			}
			sum := 0
			for _, c := range d.wordCount[t] {
				if c <= 0 {
					return &InvariantError{j, id, int(d.dish[t]), "non-positive per-word table count"}
				}
				sum += c
			}
			if sum != d.count[t] {
				return &InvariantError{j, id, int(d.dish[t]), "per-word table counts do not add up"}
			}
			k := d.dish[t]
			if k.IsNew() || !s.dishes.Contains(uint32(k)) {
				return &InvariantError{j, id, int(k), "table serves an inactive dish"}
			}
			dishTables[k] += 1
			dishWords[k] += float64(d.count[t])
			totalTables += 1
		}
	}

	if totalTables != s.totalTables {
		return &InvariantError{-1, -1, -1, "global table count differs from active tables"}
	}

	V := float64(s.vocabSize)
	for id := 1; id < len(s.tableCount); id += 1 {
		k := DishID(id)
		active := s.dishes.Contains(uint32(k))
		if s.tableCount[k] != dishTables[k] {
			return &InvariantError{-1, -1, id, "dish table count differs from serving tables"}
		}
		if active != (s.tableCount[k] > 0) {
			return &InvariantError{-1, -1, id, "dish is active iff it serves a table"}
		}
		if !active {
			continue
		}
		sum := 0.0
		for v := uint32(0); v < uint32(s.vocabSize); v += 1 {
			sum += s.wordCount[k].Get(v)
		}
		if math.Abs(s.wordTotal[k]-sum) > countTolerance {
			return &InvariantError{-1, -1, id, "word total differs from per-word counts"}
		}
		if math.Abs(s.wordTotal[k]-s.beta*V-dishWords[k]) > countTolerance {
			return &InvariantError{-1, -1, id, "word total differs from seated words"}
		}
	}

	for j, d := range s.docs {
		if int(d.tables.Cap()) > len(d.count) {
			return &InvariantError{j, -1, -1, "table storage shorter than allocated ids"}
		}
	}
	if int(s.dishes.Cap()) > len(s.tableCount) {
		return &InvariantError{-1, -1, -1, "dish storage shorter than allocated ids"}
	}
	return nil
}
