package sstable

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AssignmentSerialize writes the seating of a sampler to file. The first
// line holds the number of documents, then every document contributes a
// line "t,docId,table table ..." with the table of each word and a line
// "d,docId,dish dish ..." with the dish of each table id.
func AssignmentSerialize(tables [][]uint32, dishes [][]uint32, fn string) error {
	if len(tables) != len(dishes) {
		return fmt.Errorf("assignment rows differ: %d tables, %d dishes", len(tables), len(dishes))
	}
	out, err := os.OpenFile(fn, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%d\n", len(tables))
	for j := range tables {
		fmt.Fprintf(w, "t,%d,%s\n", j, joinUint32(tables[j]))
		fmt.Fprintf(w, "d,%d,%s\n", j, joinUint32(dishes[j]))
	}
	return w.Flush()
}

// AssignmentDeserialize reads back what AssignmentSerialize wrote.
func AssignmentDeserialize(fn string) ([][]uint32, [][]uint32, error) {
	file, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var tables, dishes [][]uint32
	lineIdx := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		txt := scanner.Text()
		if lineIdx == 0 {
			n, err := strconv.ParseUint(strings.TrimSpace(txt), 10, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("assignments corrupted, document count not found: %s", txt)
			}
			tables = make([][]uint32, n)
			dishes = make([][]uint32, n)
			lineIdx += 1
			continue
		}

		fields := strings.SplitN(txt, ",", 3)
		if len(fields) != 3 {
			return nil, nil, fmt.Errorf("assignments corrupted, row %d, data %s", lineIdx, txt)
		}
		j, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, nil, err
		}
		if int(j) >= len(tables) {
			return nil, nil, fmt.Errorf("assignments corrupted, row %d: document %d out of range", lineIdx, j)
		}
		vals, err := splitUint32(fields[2])
		if err != nil {
			return nil, nil, err
		}
		switch fields[0] {
		case "t":
			tables[j] = vals
		case "d":
			dishes[j] = vals
		default:
			return nil, nil, fmt.Errorf("assignments corrupted, row %d: unknown kind %q", lineIdx, fields[0])
		}
		lineIdx += 1
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if tables == nil {
		return nil, nil, fmt.Errorf("assignments corrupted, empty file %s", fn)
	}
	return tables, dishes, nil
}

func joinUint32(vals []uint32) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(strs, " ")
}

func splitUint32(txt string) ([]uint32, error) {
	fields := strings.Fields(txt)
	vals := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, err
		}
		vals[i] = uint32(v)
	}
	return vals, nil
}
