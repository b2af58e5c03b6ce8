package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "program_name,university,region,tier,duration,language,degree_type," +
	"pros,cons,admission_preference,application_notes,scholarship," +
	"admission_data,admission_data_count,internship_required,thesis_required," +
	"other_info,other_notes"

func TestReadParsesRows(t *testing.T) {
	data := testHeader + "\n" +
		"MSCS,NUS,新加坡,T1,1.5年,英语,授课型,排名高,贵,偏好985,需要GRE,少量,null,0,否,是,就业好,无\n" +
		"MSAI,NTU,新加坡,T1,1年,英语,授课型,新项目,无数据,不限,无,无,null,0,否,否,,\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "MSCS", rows[0].ProgramName)
	assert.Equal(t, "NUS", rows[0].University)
	assert.Equal(t, "新加坡", rows[0].Region)
	assert.Equal(t, "是", rows[0].ThesisRequired)
	assert.Equal(t, "MSAI", rows[1].ProgramName)
	assert.Equal(t, "", rows[1].OtherInfo)
}

func TestReadPadsShortRows(t *testing.T) {
	data := testHeader + "\nMSCS,NUS,新加坡\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "MSCS", rows[0].ProgramName)
	assert.Equal(t, "新加坡", rows[0].Region)
	assert.Equal(t, "", rows[0].Tier)
	assert.Equal(t, "", rows[0].OtherNotes)
}

func TestReadIgnoresExtraColumns(t *testing.T) {
	data := testHeader + ",extra_column\n" +
		"MSCS,NUS,新加坡,T1,1.5年,英语,授课型,a,b,c,d,e,null,0,否,是,f,g,ignored\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MSCS", rows[0].ProgramName)
}

func TestReadMissingColumn(t *testing.T) {
	data := "program_name,university\nMSCS,NUS\n"

	_, err := Read(strings.NewReader(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "region")
}

func TestReadEmptyFile(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMalformedDataset)
}

func TestReadHeaderOnly(t *testing.T) {
	rows, err := Read(strings.NewReader(testHeader + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadQuotedAdmissionData(t *testing.T) {
	data := testHeader + "\n" +
		`MSCS,NUS,新加坡,T1,1.5年,英语,授课型,a,b,c,d,e,"[{'录取时间': '2024 Fall', '录取结果': '录取'}]",1,否,是,f,g` + "\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "[{'录取时间': '2024 Fall', '录取结果': '录取'}]", rows[0].AdmissionData)
	assert.Equal(t, "1", rows[0].AdmissionDataCount)
}

func TestLoad(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.csv")
		data := testHeader + "\nMSCS,NUS,新加坡,T1,1.5年,英语,授课型,a,b,c,d,e,null,0,否,是,f,g\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		rows, err := Load(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "NUS", rows[0].University)
	})
}
