package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/progdex/core"
)

var (
	// ErrDatasetNotFound indicates the source file does not exist.
	ErrDatasetNotFound = errors.New("dataset file not found")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrMalformedDataset indicates the file could not be parsed as CSV.
	ErrMalformedDataset = errors.New("malformed dataset")
)

// RequiredColumns lists the columns every source catalog must provide.
var RequiredColumns = []string{
	"program_name",
	"university",
	"region",
	"tier",
	"duration",
	"language",
	"degree_type",
	"pros",
	"cons",
	"admission_preference",
	"application_notes",
	"scholarship",
	"admission_data",
	"admission_data_count",
	"internship_required",
	"thesis_required",
	"other_info",
	"other_notes",
}

// Load reads the catalog CSV at path into rows. The header must contain
// every required column; extra columns are ignored. Missing cells are empty
// strings. Load fails before any store mutation can have occurred, so a bad
// dataset never produces a partial collection.
func Load(path string) ([]core.ProgramRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read parses catalog rows from an open CSV stream.
func Read(r io.Reader) ([]core.ProgramRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are padded with empty strings

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedDataset)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedDataset, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []core.ProgramRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDataset, err)
		}

		cell := func(name string) string {
			i := columns[name]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}

		rows = append(rows, core.ProgramRow{
			ProgramName:         cell("program_name"),
			University:          cell("university"),
			Region:              cell("region"),
			Tier:                cell("tier"),
			Duration:            cell("duration"),
			Language:            cell("language"),
			DegreeType:          cell("degree_type"),
			Pros:                cell("pros"),
			Cons:                cell("cons"),
			AdmissionPreference: cell("admission_preference"),
			ApplicationNotes:    cell("application_notes"),
			Scholarship:         cell("scholarship"),
			AdmissionData:       cell("admission_data"),
			AdmissionDataCount:  cell("admission_data_count"),
			InternshipRequired:  cell("internship_required"),
			ThesisRequired:      cell("thesis_required"),
			OtherInfo:           cell("other_info"),
			OtherNotes:          cell("other_notes"),
		})
	}

	return rows, nil
}
