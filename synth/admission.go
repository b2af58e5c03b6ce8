package synth

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/progdex/core"
)

// noCasesSentinel is emitted when a program has no admission history on file.
const noCasesSentinel = "暂无录取案例数据"

// fallbackLabel prefixes the raw field value when parsing fails.
const fallbackLabel = "录取数据: "

// Source keys of a serialized admission case dictionary.
const (
	caseKeyTerm       = "录取时间"
	caseKeyOutcome    = "录取结果"
	caseKeySchoolTier = "学校（档次）"
	caseKeyMajor      = "本科专业"
	caseKeyGPARank    = "GPA/Rank"
	caseKeyResearch   = "科研经历"
	caseKeyInternship = "实习经历"
	caseKeyNote       = "其他（语言/推荐信）"
)

// missingValue stands in for keys absent from a case dictionary.
const missingValue = "N/A"

// ParseAdmissionHistory resolves the admission-data field into its tagged
// form. The source serializes case lists with single quotes in place of
// double quotes; quoting is normalized before parsing. Any failure yields
// the Malformed variant carrying the raw value; parsing never returns an
// error.
func ParseAdmissionHistory(raw string) core.AdmissionHistory {
	if raw == "" || raw == "null" {
		return core.AdmissionHistory{Kind: core.HistoryAbsent}
	}

	normalized := strings.ReplaceAll(raw, "'", `"`)

	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.UseNumber()

	var entries []map[string]any
	if err := dec.Decode(&entries); err != nil {
		return core.AdmissionHistory{Kind: core.HistoryMalformed, Raw: raw}
	}

	cases := make([]core.AdmissionCase, len(entries))
	for i, entry := range entries {
		cases[i] = core.AdmissionCase{
			Term:       caseField(entry, caseKeyTerm),
			Outcome:    caseField(entry, caseKeyOutcome),
			SchoolTier: caseField(entry, caseKeySchoolTier),
			Major:      caseField(entry, caseKeyMajor),
			GPARank:    caseField(entry, caseKeyGPARank),
			Research:   caseField(entry, caseKeyResearch),
			Internship: caseField(entry, caseKeyInternship),
			Note:       optionalCaseField(entry, caseKeyNote),
		}
	}

	return core.AdmissionHistory{Kind: core.HistoryParsed, Cases: cases}
}

// RenderAdmissionHistory renders the resolved history as the narrative used
// in document text. Cases are joined with a single space.
func RenderAdmissionHistory(history core.AdmissionHistory) string {
	switch history.Kind {
	case core.HistoryAbsent:
		return noCasesSentinel
	case core.HistoryMalformed:
		return fallbackLabel + history.Raw
	}

	sentences := make([]string, len(history.Cases))
	for i, c := range history.Cases {
		var b strings.Builder
		b.WriteString("录取案例(" + c.Term + "): " + c.Outcome + "。")
		b.WriteString("申请者背景: " + c.SchoolTier + " " + c.Major + "专业，")
		b.WriteString("GPA/Rank " + c.GPARank + "，")
		b.WriteString("科研经历 " + c.Research + "，")
		b.WriteString("实习经历 " + c.Internship + "。")
		if c.Note != "" {
			b.WriteString("其他信息: " + c.Note)
		}
		sentences[i] = b.String()
	}
	return strings.Join(sentences, " ")
}

// caseField stringifies a case dictionary value, substituting missingValue
// for absent keys. Present-but-empty values stay empty.
func caseField(entry map[string]any, key string) string {
	v, ok := entry[key]
	if !ok {
		return missingValue
	}
	return stringify(v)
}

// optionalCaseField is like caseField but absent keys yield the empty
// string, so optional trailing notes are omitted entirely.
func optionalCaseField(entry map[string]any, key string) string {
	v, ok := entry[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	}
	// Nested values inside a case are not part of the format; render their
	// JSON form rather than dropping them.
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
