package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/progdex/core"
)

func filterMeta() core.Metadata {
	return core.Metadata{
		ProgramName:        "MSCS",
		University:         "NUS",
		Region:             "新加坡",
		Tier:               "T1",
		ThesisRequired:     true,
		AdmissionCaseCount: 3,
	}
}

func TestEq(t *testing.T) {
	m := filterMeta()

	assert.True(t, Eq{Field: core.FieldRegion, Value: "新加坡"}.Matches(m))
	assert.False(t, Eq{Field: core.FieldRegion, Value: "香港"}.Matches(m))
	assert.False(t, Eq{Field: "bogus", Value: "x"}.Matches(m))

	assert.NoError(t, Eq{Field: core.FieldRegion}.Validate())
	assert.ErrorIs(t, Eq{Field: "bogus"}.Validate(), core.ErrUnknownField)
	assert.ErrorIs(t, Eq{Field: core.FieldThesisRequired}.Validate(), core.ErrUnknownField)
}

func TestIn(t *testing.T) {
	m := filterMeta()

	assert.True(t, In{Field: core.FieldRegion, Values: []string{"香港", "新加坡"}}.Matches(m))
	assert.False(t, In{Field: core.FieldRegion, Values: []string{"香港", "英国"}}.Matches(m))
	assert.False(t, In{Field: core.FieldRegion}.Matches(m), "empty value set matches nothing")

	assert.NoError(t, In{Field: core.FieldTier}.Validate())
	assert.ErrorIs(t, In{Field: "bogus"}.Validate(), core.ErrUnknownField)
}

func TestNotIn(t *testing.T) {
	m := filterMeta()

	assert.True(t, NotIn{Field: core.FieldRegion, Values: []string{"美国"}}.Matches(m))
	assert.False(t, NotIn{Field: core.FieldRegion, Values: []string{"新加坡"}}.Matches(m))
	assert.True(t, NotIn{Field: core.FieldRegion}.Matches(m), "empty value set excludes nothing")

	assert.ErrorIs(t, NotIn{Field: "bogus"}.Validate(), core.ErrUnknownField)
}

func TestBoolEq(t *testing.T) {
	m := filterMeta()

	assert.True(t, BoolEq{Field: core.FieldThesisRequired, Value: true}.Matches(m))
	assert.False(t, BoolEq{Field: core.FieldThesisRequired, Value: false}.Matches(m))
	assert.True(t, BoolEq{Field: core.FieldInternshipRequired, Value: false}.Matches(m))

	assert.NoError(t, BoolEq{Field: core.FieldThesisRequired}.Validate())
	assert.ErrorIs(t, BoolEq{Field: core.FieldRegion}.Validate(), core.ErrUnknownField)
}

func TestGt(t *testing.T) {
	m := filterMeta()

	assert.True(t, Gt{Field: core.FieldAdmissionCaseCount, Value: 0}.Matches(m))
	assert.True(t, Gt{Field: core.FieldAdmissionCaseCount, Value: 2}.Matches(m))
	assert.False(t, Gt{Field: core.FieldAdmissionCaseCount, Value: 3}.Matches(m), "strictly greater")

	assert.NoError(t, Gt{Field: core.FieldAdmissionCaseCount}.Validate())
	assert.ErrorIs(t, Gt{Field: core.FieldRegion}.Validate(), core.ErrUnknownField)
}

func TestAnd(t *testing.T) {
	m := filterMeta()

	assert.True(t, And{}.Matches(m), "empty conjunction matches everything")
	assert.NoError(t, And{}.Validate())

	both := And{Preds: []Predicate{
		Eq{Field: core.FieldRegion, Value: "新加坡"},
		Gt{Field: core.FieldAdmissionCaseCount, Value: 0},
	}}
	assert.True(t, both.Matches(m))

	oneFails := And{Preds: []Predicate{
		Eq{Field: core.FieldRegion, Value: "新加坡"},
		BoolEq{Field: core.FieldThesisRequired, Value: false},
	}}
	assert.False(t, oneFails.Matches(m))

	invalid := And{Preds: []Predicate{
		Eq{Field: core.FieldRegion, Value: "新加坡"},
		Gt{Field: "bogus", Value: 0},
	}}
	assert.ErrorIs(t, invalid.Validate(), core.ErrUnknownField)
}

func TestAndNested(t *testing.T) {
	m := filterMeta()
	nested := And{Preds: []Predicate{
		And{Preds: []Predicate{Eq{Field: core.FieldTier, Value: "T1"}}},
		NotIn{Field: core.FieldRegion, Values: []string{"美国"}},
	}}
	assert.True(t, nested.Matches(m))
	assert.NoError(t, nested.Validate())
}
