// Vocabulary loading: the classifier's fixed class list is shipped as a CSV
// class map ("index,mid,display_name", one row per class, with a header).
package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// loadVocabulary parses a class-map CSV into an ordered list of display
// names. Row order must follow the class index column; gaps or out-of-order
// indices are rejected so that score vectors and names can be zipped by
// position.
func loadVocabulary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseVocabulary(f)
}

func parseVocabulary(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	// Header row.
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("classifier: class map header: %w", err)
	}

	var names []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("classifier: class map row: %w", err)
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("classifier: class index %q: %w", rec[0], err)
		}
		if idx != len(names) {
			return nil, fmt.Errorf("classifier: class map not contiguous at index %d", idx)
		}
		names = append(names, rec[2])
	}
	if len(names) == 0 {
		return nil, errors.New("classifier: empty class map")
	}
	return names, nil
}
