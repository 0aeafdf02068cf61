package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/klauspost/compress/gzip"

	"github.com/bobonovski/gohdp/util"
)

var ErrBadDocument = errors.New("corpus: bad document")

type Corpus struct {
	VocabSize uint32
	DocNum    uint32
	Docs      [][]*WordCount
}

type WordCount struct {
	WordId uint32
	Count  uint32
}

func ExpandWords(wcs []*WordCount) []uint32 {
	var words []uint32
	for _, wc := range wcs {
		for i := uint32(0); i < wc.Count; i += 1 {
			words = append(words, wc.WordId)
		}
	}
	return words
}

// FromWords builds a corpus from documents given as ordered vocabulary
// ids, keeping the word order.
func FromWords(docs [][]uint32) *Corpus {
	c := &Corpus{Docs: make([][]*WordCount, len(docs))}
	for j, words := range docs {
		c.Docs[j] = make([]*WordCount, 0, len(words))
		for _, w := range words {
			c.Docs[j] = append(c.Docs[j], &WordCount{WordId: w, Count: 1})
			if w+1 > c.VocabSize {
				c.VocabSize = w + 1
			}
		}
	}
	c.DocNum = uint32(len(docs))
	return c
}

// Words expands every document into its sequence of vocabulary ids.
func (this *Corpus) Words() [][]uint32 {
	docs := make([][]uint32, len(this.Docs))
	for j, wcs := range this.Docs {
		docs[j] = ExpandWords(wcs)
	}
	return docs
}

// total number of words in the corpus
func (this *Corpus) WordNum() int {
	n := 0
	for _, wcs := range this.Docs {
		counts := make([]uint32, len(wcs))
		for i, wc := range wcs {
			counts[i] = wc.Count
		}
		n += int(util.VectorSum(counts))
	}
	return n
}

// load training data in LDA-C format from file, each line looks like:
// [termNum wordId:wordCount wordId:wordCount ... wordId:wordCount]
// files ending in .gz are decompressed on the fly. The vocabulary size
// is the largest word id plus one.
func (this *Corpus) Load(fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(fn, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}

	if err := this.Read(r); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}

	log.Infof("number of documents %d", this.DocNum)
	log.Infof("vocabulary size %d", this.VocabSize)
	log.Infof("number of words %d", this.WordNum())
	return nil
}

// Read appends the LDA-C documents of r to the corpus. Blank lines are
// skipped; a malformed line is an error.
func (this *Corpus) Read(r io.Reader) error {
	vocabMaxId := int64(this.VocabSize) - 1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx += 1
		doc := strings.TrimSpace(scanner.Text())
		if doc == "" {
			continue
		}
		vals := strings.Fields(doc)

		termNum, err := strconv.ParseUint(vals[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: line %d: term count %q", ErrBadDocument, lineIdx, vals[0])
		}
		if int(termNum) != len(vals)-1 {
			log.Warningf("line %d declares %d terms but lists %d", lineIdx, termNum, len(vals)-1)
		}

		wcs := make([]*WordCount, 0, len(vals)-1)
		for _, kv := range vals[1:] {
			wc := strings.Split(kv, ":")
			if len(wc) != 2 {
				return fmt.Errorf("%w: line %d: word count %q", ErrBadDocument, lineIdx, kv)
			}
			wordId, err := strconv.ParseUint(wc[0], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: line %d: word id %q", ErrBadDocument, lineIdx, wc[0])
			}
			count, err := strconv.ParseUint(wc[1], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: line %d: count %q", ErrBadDocument, lineIdx, wc[1])
			}
			wcs = append(wcs, &WordCount{
				WordId: uint32(wordId),
				Count:  uint32(count),
			})
			if int64(wordId) > vocabMaxId {
				vocabMaxId = int64(wordId)
			}
		}
		this.Docs = append(this.Docs, wcs)
		this.DocNum += uint32(1)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	this.VocabSize = uint32(vocabMaxId + 1)
	return nil
}
