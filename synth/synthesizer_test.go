package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/progdex/core"
)

func sampleRow() core.ProgramRow {
	return core.ProgramRow{
		ProgramName:         "MSc Computer Science",
		University:          "NUS",
		Region:              "新加坡",
		Tier:                "T1",
		Duration:            "1.5年",
		Language:            "英语",
		DegreeType:          "授课型",
		Pros:                "排名高",
		Cons:                "竞争激烈",
		AdmissionPreference: "偏好985/211",
		ApplicationNotes:    "需要GRE",
		Scholarship:         "少量奖学金",
		AdmissionData:       "[{'录取时间': '2024 Fall', '录取结果': '录取', '学校（档次）': '985', '本科专业': '计算机', 'GPA/Rank': '3.8', '科研经历': '两段', '实习经历': '一段'}]",
		AdmissionDataCount:  "1",
		InternshipRequired:  "否",
		ThesisRequired:      "是",
		OtherInfo:           "就业好",
		OtherNotes:          "可以转博",
	}
}

func TestSynthesizeAssignsPositionalID(t *testing.T) {
	row := sampleRow()
	assert.Equal(t, "program_0", Synthesize(row, 0).ID)
	assert.Equal(t, "program_41", Synthesize(row, 41).ID)
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	row := sampleRow()
	first := Synthesize(row, 3)
	second := Synthesize(row, 3)
	assert.Equal(t, first, second)
}

func TestSynthesizeIndexOnlyAffectsID(t *testing.T) {
	row := sampleRow()
	a := Synthesize(row, 0)
	b := Synthesize(row, 99)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Metadata, b.Metadata)
}

func TestBuildTextFieldOrder(t *testing.T) {
	text := BuildText(sampleRow())

	labels := []string{
		"项目名称: MSc Computer Science",
		"所属大学: NUS",
		"地区: 新加坡",
		"项目等级: T1",
		"学制: 1.5年",
		"授课语言: 英语",
		"学位类型: 授课型",
		"项目优点: 排名高",
		"项目缺点: 竞争激烈",
		"招生偏好: 偏好985/211",
		"申请注意事项: 需要GRE",
		"奖学金信息: 少量奖学金",
		"过往录取案例: 录取案例(2024 Fall)",
		"其他信息: 就业好 可以转博",
	}

	last := -1
	for _, label := range labels {
		idx := strings.Index(text, label)
		require.GreaterOrEqual(t, idx, 0, "missing label %q", label)
		assert.Greater(t, idx, last, "label %q out of order", label)
		last = idx
	}
}

func TestBuildTextRendersAbsentHistory(t *testing.T) {
	row := sampleRow()
	row.AdmissionData = ""
	assert.Contains(t, BuildText(row), "过往录取案例: 暂无录取案例数据")

	row.AdmissionData = "null"
	assert.Contains(t, BuildText(row), "过往录取案例: 暂无录取案例数据")
}

func TestBuildTextFallsBackOnMalformedHistory(t *testing.T) {
	row := sampleRow()
	row.AdmissionData = "{broken"
	assert.Contains(t, BuildText(row), "过往录取案例: 录取数据: {broken")
}

func TestBuildTextTrimsTrailingWhitespace(t *testing.T) {
	row := sampleRow()
	row.OtherInfo = ""
	row.OtherNotes = ""
	text := BuildText(row)
	assert.Equal(t, strings.TrimSpace(text), text)
}

func TestFlattenMetadataBooleans(t *testing.T) {
	row := sampleRow()
	m := FlattenMetadata(row)
	assert.False(t, m.InternshipRequired)
	assert.True(t, m.ThesisRequired)

	row.InternshipRequired = " 是 "
	row.ThesisRequired = "yes"
	m = FlattenMetadata(row)
	assert.True(t, m.InternshipRequired, "sentinel survives surrounding whitespace")
	assert.False(t, m.ThesisRequired, "only the sentinel means true")
}

func TestFlattenMetadataCaseCount(t *testing.T) {
	row := sampleRow()

	row.AdmissionDataCount = "12"
	assert.Equal(t, 12, FlattenMetadata(row).AdmissionCaseCount)

	row.AdmissionDataCount = ""
	assert.Equal(t, 0, FlattenMetadata(row).AdmissionCaseCount)

	row.AdmissionDataCount = "3 cases"
	assert.Equal(t, 0, FlattenMetadata(row).AdmissionCaseCount)

	row.AdmissionDataCount = "-2"
	assert.Equal(t, 0, FlattenMetadata(row).AdmissionCaseCount)
}

func TestFlattenMetadataCopiesStringFields(t *testing.T) {
	m := FlattenMetadata(sampleRow())
	assert.Equal(t, "MSc Computer Science", m.ProgramName)
	assert.Equal(t, "NUS", m.University)
	assert.Equal(t, "新加坡", m.Region)
	assert.Equal(t, "T1", m.Tier)
	assert.Equal(t, "1.5年", m.Duration)
	assert.Equal(t, "英语", m.Language)
	assert.Equal(t, "授课型", m.DegreeType)
}
