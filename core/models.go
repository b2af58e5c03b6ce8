package core

import "fmt"

// ProgramRow is a single row of the source catalog, exactly as read from the
// CSV file. All fields are raw strings; missing cells are empty strings.
// Rows are immutable once read.
type ProgramRow struct {
	ProgramName         string
	University          string
	Region              string
	Tier                string
	Duration            string
	Language            string
	DegreeType          string
	Pros                string
	Cons                string
	AdmissionPreference string
	ApplicationNotes    string
	Scholarship         string
	AdmissionData       string
	AdmissionDataCount  string
	InternshipRequired  string
	ThesisRequired      string
	OtherInfo           string
	OtherNotes          string
}

// Metadata is the flat, typed projection of a ProgramRow used for exact
// filtering. It holds scalars only; the filter language does not support
// nested values.
type Metadata struct {
	ProgramName        string
	University         string
	Region             string
	Tier               string
	Duration           string
	Language           string
	DegreeType         string
	InternshipRequired bool
	ThesisRequired     bool
	AdmissionCaseCount int
}

// Filterable metadata field names. Filter predicates and CLI flags address
// metadata fields by these keys.
const (
	FieldProgramName        = "program_name"
	FieldUniversity         = "university"
	FieldRegion             = "region"
	FieldTier               = "tier"
	FieldDuration           = "duration"
	FieldLanguage           = "language"
	FieldDegreeType         = "degree_type"
	FieldInternshipRequired = "internship_required"
	FieldThesisRequired     = "thesis_required"
	FieldAdmissionCaseCount = "admission_data_count"
)

// StringField returns the named string field. The second return is false if
// the name does not refer to a string field.
func (m Metadata) StringField(name string) (string, bool) {
	switch name {
	case FieldProgramName:
		return m.ProgramName, true
	case FieldUniversity:
		return m.University, true
	case FieldRegion:
		return m.Region, true
	case FieldTier:
		return m.Tier, true
	case FieldDuration:
		return m.Duration, true
	case FieldLanguage:
		return m.Language, true
	case FieldDegreeType:
		return m.DegreeType, true
	}
	return "", false
}

// BoolField returns the named boolean field.
func (m Metadata) BoolField(name string) (bool, bool) {
	switch name {
	case FieldInternshipRequired:
		return m.InternshipRequired, true
	case FieldThesisRequired:
		return m.ThesisRequired, true
	}
	return false, false
}

// IntField returns the named integer field.
func (m Metadata) IntField(name string) (int, bool) {
	if name == FieldAdmissionCaseCount {
		return m.AdmissionCaseCount, true
	}
	return 0, false
}

// ProgramDocument is the indexable form of one catalog row: a stable id, a
// synthesized text document, and the flattened metadata.
type ProgramDocument struct {
	ID       string
	Text     string
	Metadata Metadata
}

// DocumentID returns the id for the row at the given ordinal position.
// Ids are positional, not content-derived: re-synthesizing the same dataset
// in the same order yields identical ids, while reordering rows reassigns
// them.
func DocumentID(index int) string {
	return fmt.Sprintf("program_%d", index)
}

// AdmissionHistoryKind discriminates the three states of the admission-data
// field.
type AdmissionHistoryKind int

const (
	// HistoryAbsent means the field was empty or the "null" sentinel.
	HistoryAbsent AdmissionHistoryKind = iota
	// HistoryMalformed means the field could not be parsed; Raw holds the
	// original value.
	HistoryMalformed
	// HistoryParsed means the field parsed into a list of cases.
	HistoryParsed
)

// AdmissionHistory is the resolved form of the admission-data field.
// The source encodes it as a loosely quoted, string-serialized list of case
// dictionaries, or a "null" sentinel; it is resolved exactly once during
// synthesis.
type AdmissionHistory struct {
	Kind  AdmissionHistoryKind
	Raw   string
	Cases []AdmissionCase
}

// AdmissionCase is one past admission case from a program's history.
type AdmissionCase struct {
	Term       string
	Outcome    string
	SchoolTier string
	Major      string
	GPARank    string
	Research   string
	Internship string
	Note       string // optional trailing note (language scores, recommendations)
}

// SearchResult is a single hit from a collection search, ranked by raw
// distance ascending.
type SearchResult struct {
	ID       string
	Document string
	Metadata Metadata
	Distance float32
}

// QueryResult is a SearchResult with the display-oriented similarity score.
// Similarity is 1 - Distance and assumes a distance normalized to [0,1];
// values outside that range are reported as-is.
type QueryResult struct {
	ID         string
	Document   string
	Metadata   Metadata
	Distance   float32
	Similarity float32
}

// RebuildStats reports the outcome of a collection rebuild.
type RebuildStats struct {
	TotalRows        int
	TotalBatches     int
	CommittedItems   int
	CommittedBatches int
	// FailedBatch is the zero-based index of the batch that failed, or -1 if
	// the rebuild completed.
	FailedBatch int
}

// CollectionStats summarizes a collection for dataset audits.
type CollectionStats struct {
	TotalCount     int
	ByRegion       map[string]int
	ByTier         map[string]int
	ThesisRequired int
}
