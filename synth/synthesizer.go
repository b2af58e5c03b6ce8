package synth

import (
	"strings"

	"github.com/poiesic/progdex/core"
)

// boolSentinel is the only source value that flattens to true for boolean
// flags. Every other value, including empty, is false.
const boolSentinel = "是"

// Synthesize turns one catalog row into its indexable document. The row's
// ordinal position in the dataset determines the id. Synthesis is pure and
// never fails; malformed admission history falls back to a labeled raw
// rendering.
func Synthesize(row core.ProgramRow, index int) core.ProgramDocument {
	return core.ProgramDocument{
		ID:       core.DocumentID(index),
		Text:     BuildText(row),
		Metadata: FlattenMetadata(row),
	}
}

// BuildText assembles the multi-field document used for semantic search.
// Field order is fixed so embeddings are reproducible across rebuilds.
func BuildText(row core.ProgramRow) string {
	admission := RenderAdmissionHistory(ParseAdmissionHistory(row.AdmissionData))

	var b strings.Builder
	b.WriteString("项目名称: " + row.ProgramName + "\n")
	b.WriteString("所属大学: " + row.University + "\n")
	b.WriteString("地区: " + row.Region + "\n")
	b.WriteString("项目等级: " + row.Tier + "\n")
	b.WriteString("学制: " + row.Duration + "\n")
	b.WriteString("授课语言: " + row.Language + "\n")
	b.WriteString("学位类型: " + row.DegreeType + "\n\n")
	b.WriteString("项目优点: " + row.Pros + "\n\n")
	b.WriteString("项目缺点: " + row.Cons + "\n\n")
	b.WriteString("招生偏好: " + row.AdmissionPreference + "\n\n")
	b.WriteString("申请注意事项: " + row.ApplicationNotes + "\n\n")
	b.WriteString("奖学金信息: " + row.Scholarship + "\n\n")
	b.WriteString("过往录取案例: " + admission + "\n\n")
	b.WriteString("其他信息: " + row.OtherInfo + " " + row.OtherNotes)

	return strings.TrimSpace(b.String())
}

// FlattenMetadata projects a row onto the flat filterable metadata record.
// Boolean flags are true only for the canonical sentinel value; the case
// count coerces to an integer only when the source consists entirely of
// digits.
func FlattenMetadata(row core.ProgramRow) core.Metadata {
	return core.Metadata{
		ProgramName:        row.ProgramName,
		University:         row.University,
		Region:             row.Region,
		Tier:               row.Tier,
		Duration:           row.Duration,
		Language:           row.Language,
		DegreeType:         row.DegreeType,
		InternshipRequired: strings.TrimSpace(row.InternshipRequired) == boolSentinel,
		ThesisRequired:     strings.TrimSpace(row.ThesisRequired) == boolSentinel,
		AdmissionCaseCount: digitCount(row.AdmissionDataCount),
	}
}

func digitCount(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
