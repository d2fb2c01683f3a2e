package frames

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ssargent/rkgkit/pkg/rkg"
)

// ErrMalformedFrame reports a line of a frame file that cannot be parsed.
var ErrMalformedFrame = errors.New("malformed frame")

// Column order of a frame file:
//
//	accelerate,brake,item,stickX,stickY,trick
const fieldsPerFrame = 6

// ReadCSV parses one frame per line. Empty lines are skipped.
func ReadCSV(r io.Reader) (*Sequence, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	seq := &Sequence{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return seq, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read frames: %w", err)
		}
		line, _ := cr.FieldPos(0)

		in, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		seq.Append(in)
	}
}

func parseRecord(record []string) (rkg.Input, error) {
	if len(record) != fieldsPerFrame {
		return rkg.Input{}, fmt.Errorf("%d fields, want %d: %w", len(record), fieldsPerFrame, ErrMalformedFrame)
	}

	var values [fieldsPerFrame]int
	for i, field := range record {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return rkg.Input{}, fmt.Errorf("field %d %q: %w", i+1, field, ErrMalformedFrame)
		}
		values[i] = v
	}

	for i := 0; i < 3; i++ {
		if values[i] != 0 && values[i] != 1 {
			return rkg.Input{}, fmt.Errorf("button field %d is %d: %w", i+1, values[i], ErrMalformedFrame)
		}
	}

	return rkg.Input{
		Accelerate: values[0] == 1,
		Brake:      values[1] == 1,
		Item:       values[2] == 1,
		StickX:     values[3],
		StickY:     values[4],
		Trick:      values[5],
	}, nil
}

// WriteCSV writes one frame per line.
func (s *Sequence) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	record := make([]string, fieldsPerFrame)
	for _, in := range s.frames {
		record[0] = boolField(in.Accelerate)
		record[1] = boolField(in.Brake)
		record[2] = boolField(in.Item)
		record[3] = strconv.Itoa(in.StickX)
		record[4] = strconv.Itoa(in.StickY)
		record[5] = strconv.Itoa(in.Trick)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write frames: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// LoadFile reads a frame file.
func LoadFile(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seq, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}

// SaveFile writes the sequence to path, creating parent directories.
func (s *Sequence) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// BackupPath fills the "##" placeholder of pattern with a two digit number.
func BackupPath(pattern string, n int) string {
	return strings.ReplaceAll(pattern, "##", fmt.Sprintf("%02d", n))
}
