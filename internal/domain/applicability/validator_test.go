package applicability

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
)

const pfoaAnion = "O=C([O-])C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)F"

func mustMol(t *testing.T, smiles string) *molecule.Molecule {
	t.Helper()
	m, err := molecule.Parse(smiles)
	require.NoError(t, err)
	return m
}

func testRanges() []Range {
	return []Range{
		{Field: exposure.FieldTemperature, Min: 10, Max: 30},
		{Field: exposure.FieldLight, Min: 0, Max: 5000},
		{Field: exposure.FieldExposureTime, Min: 1, Max: 28},
		{Field: exposure.FieldConcentration, Min: 0.01, Max: 1000},
	}
}

func testCategories() []Category {
	return []Category{
		{Field: exposure.FieldSpecies, Values: []string{"Daphnia magna", "Danio rerio"}},
		{Field: exposure.FieldHabitat, Values: []string{"Freshwater", "Marine"}},
	}
}

func goodMeta() exposure.Record {
	return exposure.Record{
		exposure.FieldTemperature:   22.0,
		exposure.FieldLight:         1000.0,
		exposure.FieldExposureTime:  7.0,
		exposure.FieldConcentration: 12.5,
		exposure.FieldSpecies:       "Daphnia magna",
		exposure.FieldHabitat:       "Freshwater",
	}
}

func newTestValidator(t *testing.T, threshold float64, smiles ...string) *Validator {
	t.Helper()
	fps := make([]molecule.Fingerprint, 0, len(smiles))
	for _, s := range smiles {
		fps = append(fps, molecule.EncodeMACCS(mustMol(t, s)))
	}
	corpus, err := NewReferenceCorpus(threshold, testRanges(), testCategories(), fps)
	require.NoError(t, err)
	return NewValidator(corpus)
}

func TestEvaluate_Pass(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion, "CCO")

	got := v.Evaluate(mustMol(t, pfoaAnion), goodMeta())

	assert.True(t, got.Valid)
	assert.Equal(t, ReasonPass, got.Reason)
	assert.Empty(t, got.Reasons)
	assert.Equal(t, 1.0, got.MaxSimilarity)
	assert.Equal(t, "Pass", got.Status())
}

func TestEvaluate_NilMolecule(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)

	got := v.Evaluate(nil, goodMeta())

	assert.False(t, got.Valid)
	assert.Equal(t, "Invalid Molecule (SMILES Parse Error)", got.Reason)
	assert.Equal(t, 0.0, got.MaxSimilarity)
	assert.Equal(t, "Warning", got.Status())
}

func TestEvaluate_TemperatureOutOfRange(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	meta := goodMeta()
	meta[exposure.FieldTemperature] = 45.0

	got := v.Evaluate(mustMol(t, pfoaAnion), meta)

	assert.False(t, got.Valid)
	assert.Contains(t, got.Reason, "out of range")
	assert.Equal(t, "temperature out of range (45.0 not in [10.00, 30.00])", got.Reason)
}

func TestEvaluate_RangeBoundsInclusive(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	for _, temp := range []float64{10, 30} {
		meta := goodMeta()
		meta[exposure.FieldTemperature] = temp
		assert.True(t, v.Evaluate(mustMol(t, pfoaAnion), meta).Valid, "temperature %v", temp)
	}
}

func TestEvaluate_EmptyCorpus(t *testing.T) {
	for _, threshold := range []float64{DefaultThreshold, 0.1, 1} {
		corpus, err := NewReferenceCorpus(threshold, nil, nil, nil)
		require.NoError(t, err)

		got := NewValidator(corpus).Evaluate(mustMol(t, pfoaAnion), goodMeta())

		assert.Equal(t, 0.0, got.MaxSimilarity)
		assert.False(t, got.Valid)
		require.Len(t, got.Reasons, 1)
		assert.Equal(t, "Structure Dissimilar (Max Sim: 0.000 < "+exposure.FormatFloat(threshold)+")", got.Reasons[0])
	}
}

func TestEvaluate_ThresholdRendering(t *testing.T) {
	corpus, err := NewReferenceCorpus(DefaultThreshold, nil, nil, nil)
	require.NoError(t, err)
	got := NewValidator(corpus).Evaluate(mustMol(t, "CCO"), nil)
	assert.Equal(t, "Structure Dissimilar (Max Sim: 0.000 < 0.65)", got.Reason)

	corpus, err = NewReferenceCorpus(1, nil, nil, nil)
	require.NoError(t, err)
	got = NewValidator(corpus).Evaluate(mustMol(t, "CCO"), nil)
	assert.Equal(t, "Structure Dissimilar (Max Sim: 0.000 < 1.0)", got.Reason)
}

func TestEvaluate_AllReasonsInOrder(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	meta := exposure.Record{
		exposure.FieldTemperature:   "hot",
		exposure.FieldLight:         9000.0,
		exposure.FieldConcentration: 0.001,
		exposure.FieldSpecies:       "Homo sapiens",
	}

	got := v.Evaluate(mustMol(t, "c1ccccc1"), meta)

	require.Len(t, got.Reasons, 6)
	assert.Regexp(t, `^Structure Dissimilar \(Max Sim: 0\.\d{3} < 0\.65\)$`, got.Reasons[0])
	assert.Equal(t, []string{
		"Invalid number for temperature",
		"Light intensity(lux) out of range (9000.0 not in [0.00, 5000.00])",
		"PFAS concentration (μg/L) out of range (0.001 not in [0.01, 1000.00])",
		"Invalid Species: 'Homo sapiens'",
		"Invalid Habitat: 'None'",
	}, got.Reasons[1:])
	assert.Equal(t, strings.Join(got.Reasons, "; "), got.Reason)
	assert.False(t, got.Valid)
}

func TestEvaluate_AbsentNumericSkipped(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	meta := goodMeta()
	delete(meta, exposure.FieldExposureTime)
	meta[exposure.FieldLight] = nil

	got := v.Evaluate(mustMol(t, pfoaAnion), meta)

	assert.True(t, got.Valid)
}

func TestEvaluate_NumericStringCoerced(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	meta := goodMeta()
	meta[exposure.FieldTemperature] = "31"

	got := v.Evaluate(mustMol(t, pfoaAnion), meta)

	assert.Equal(t, "temperature out of range (31.0 not in [10.00, 30.00])", got.Reason)
}

func TestEvaluate_NonStringCategoryRejected(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion)
	meta := goodMeta()
	meta[exposure.FieldHabitat] = 3.0

	got := v.Evaluate(mustMol(t, pfoaAnion), meta)

	assert.Equal(t, "Invalid Habitat: '3.0'", got.Reason)
}

func TestEvaluate_PassIffNoReasons(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion, "CCO")
	metas := []exposure.Record{goodMeta(), nil, {exposure.FieldTemperature: 100.0}}
	for _, smiles := range []string{pfoaAnion, "CCO", "c1ccccc1", "CS(=O)(=O)[O-]"} {
		for _, meta := range metas {
			got := v.Evaluate(mustMol(t, smiles), meta)
			assert.Equal(t, got.Valid, got.Reason == ReasonPass)
			assert.Equal(t, got.Valid, len(got.Reasons) == 0)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion, "CCO")
	meta := goodMeta()
	meta[exposure.FieldTemperature] = 50.0
	mol := mustMol(t, "OC(=O)CCCC")

	first := v.Evaluate(mol, meta)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, v.Evaluate(mol, meta))
	}
}

func TestEvaluate_SelfSimilarity(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, "CCO")
	mol := mustMol(t, "c1ccc2ccccc2c1")
	fp := molecule.EncodeMACCS(mol)

	before := v.Evaluate(mol, goodMeta())
	assert.Less(t, before.MaxSimilarity, 1.0)

	after := NewValidator(v.Corpus().WithFingerprint(fp)).Evaluate(mol, goodMeta())
	assert.Equal(t, 1.0, after.MaxSimilarity)
	assert.Equal(t, 1, v.Corpus().Len(), "original corpus must be untouched")
}

func TestEvaluate_ConcurrentReaders(t *testing.T) {
	v := newTestValidator(t, DefaultThreshold, pfoaAnion, "CCO")
	mol := mustMol(t, pfoaAnion)
	want := v.Evaluate(mol, goodMeta())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, v.Evaluate(mol, goodMeta()))
		}()
	}
	wg.Wait()
}

//Personal.AI order the ending
