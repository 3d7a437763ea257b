package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/storage/minio"
	"github.com/turtacn/ToxPredict/internal/testutil"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

func predictArgs(bundle, temperature string) []string {
	return []string{
		"predict", "--bundle", bundle,
		"--smiles", " " + testutil.SamplePFOA + " ",
		"--temperature", temperature,
		"--light", "1000",
		"--time", "7",
		"--concentration", "10",
		"--species", "Daphnia magna",
		"--habitat", "Marine",
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// predict
// ─────────────────────────────────────────────────────────────────────────────

func TestPredict_JSON(t *testing.T) {
	dir := testutil.WriteSampleBundle(t)

	out, _, err := execute(t, append(predictArgs(dir, "25"), "-o", "json")...)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 2.75, got["prediction"], 1e-6)
	assert.Equal(t, "Pass", got["ad_status"])
	assert.InDelta(t, 1.0, got["similarity"], 1e-9)
	assert.Contains(t, got["standardized_smiles"], "[O-]")
	assert.Contains(t, got["input_smiles"], testutil.SamplePFOA)
}

func TestPredict_TextShowsReasons(t *testing.T) {
	dir := testutil.WriteSampleBundle(t)

	out, _, err := execute(t, predictArgs(dir, "45")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Prediction:          2.7500")
	assert.Contains(t, out, "Applicability:       Warning")
	assert.Contains(t, out, "  - temperature out of range (45.0 not in [10.00, 30.00])")
}

func TestPredict_Table(t *testing.T) {
	dir := testutil.WriteSampleBundle(t)

	out, _, err := execute(t, append(predictArgs(dir, "15"), "-o", "table")...)
	require.NoError(t, err)
	assert.Contains(t, out, "AD Status")
	assert.Contains(t, out, "1.7500")
}

func TestPredict_Errors(t *testing.T) {
	dir := testutil.WriteSampleBundle(t)

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"missing exposure field", []string{"predict", "--bundle", dir, "--smiles", "CCO", "--temperature", "20"}, errors.ErrCodeInputInvalid},
		{"non numeric", append(predictArgs(dir, "warm"), "-o", "json"), errors.ErrCodeInputInvalid},
		{"invalid smiles", []string{"predict", "--bundle", dir, "--smiles", "C1CC", "--temperature", "20", "--light", "1",
			"--time", "1", "--concentration", "1", "--species", "Daphnia magna", "--habitat", "Marine"}, errors.ErrCodeMoleculeInvalidSMILES},
		{"missing bundle", predictArgs(t.TempDir(), "25"), errors.ErrCodeBundleUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
			assert.Empty(t, out)
		})
	}
}

func TestPredict_SMILESRequired(t *testing.T) {
	_, _, err := execute(t, "predict", "--bundle", testutil.WriteSampleBundle(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smiles")
}

// ─────────────────────────────────────────────────────────────────────────────
// structure commands
// ─────────────────────────────────────────────────────────────────────────────

func TestStandardize(t *testing.T) {
	out, _, err := execute(t, "standardize", "OC(=O)C(F)(F)F.[Na+]", "CCO")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[O-]")
	assert.NotContains(t, lines[0], "Na")

	out, _, err = execute(t, "standardize", "-o", "json", "OC(=O)C(F)(F)F.[Na+]")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "OC(=O)C(F)(F)F.[Na+]", got[0]["input_smiles"])
	assert.Equal(t, lines[0], got[0]["standardized_smiles"])
}

func TestStandardize_Invalid(t *testing.T) {
	_, _, err := execute(t, "standardize", "CCO", "not-a-smiles(")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES))

	_, _, err = execute(t, "standardize")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	out, _, err := execute(t, "fingerprint", "-o", "json", testutil.SamplePFOA)
	require.NoError(t, err)

	var got struct {
		Bits   string `json:"bits"`
		OnBits []int  `json:"on_bits"`
		Count  int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Bits, 167)
	assert.Equal(t, got.Count, len(got.OnBits))
	assert.Equal(t, got.Count, strings.Count(got.Bits, "1"))
	assert.Equal(t, byte('0'), got.Bits[0])

	out, _, err = execute(t, "fingerprint", testutil.SamplePFOA)
	require.NoError(t, err)
	assert.Contains(t, out, "bits set")
}

func TestSimilarity(t *testing.T) {
	out, _, err := execute(t, "similarity", "-o", "json", testutil.SamplePFOA, testutil.SamplePFOA, "CCO")
	require.NoError(t, err)

	var got struct {
		References []string  `json:"references"`
		Scores     []float64 `json:"scores"`
		Max        float64   `json:"max"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Scores, 2)
	assert.InDelta(t, 1.0, got.Scores[0], 1e-9)
	assert.Less(t, got.Scores[1], 0.65)
	assert.InDelta(t, 1.0, got.Max, 1e-9)

	_, _, err = execute(t, "similarity", "CCO")
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// bundle
// ─────────────────────────────────────────────────────────────────────────────

func TestBundleCheck(t *testing.T) {
	dir := testutil.WriteSampleBundle(t)

	out, _, err := execute(t, "bundle", "check", "--bundle", dir, "-o", "json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "test-1", got["version"])
	assert.EqualValues(t, testutil.SampleFeatureDim, got["features"])
	assert.EqualValues(t, 2, got["corpus_size"])
	assert.EqualValues(t, 2, got["model_trees"])
	assert.Contains(t, got, "options")

	out, _, err = execute(t, "bundle", "check", "--bundle", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Bundle test-1")
	assert.Contains(t, out, "Species: Daphnia magna, Danio rerio")

	out, _, err = execute(t, "bundle", "check", "--bundle", dir, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "threshold")
	assert.Contains(t, out, "0.65")
}

func TestBundleCheck_Inconsistent(t *testing.T) {
	m := testutil.SampleManifest()
	m["num_indices"] = []int{0, 1, 2}
	dir := testutil.WriteBundle(t, m)

	_, _, err := execute(t, "bundle", "check", "--bundle", dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBundleInvalid), err.Error())
}

// memStore records uploads for bundle push.
type memStore struct {
	minio.ObjectStorageRepository
	uploads map[string][]byte
	closed  bool
}

func (m *memStore) Upload(_ context.Context, req *minio.UploadRequest) (*minio.UploadResult, error) {
	m.uploads[req.Bucket+"/"+req.ObjectKey] = req.Data
	return &minio.UploadResult{Bucket: req.Bucket, ObjectKey: req.ObjectKey, Size: int64(len(req.Data))}, nil
}

func withMemStore(t *testing.T) *memStore {
	t.Helper()
	store := &memStore{uploads: map[string][]byte{}}
	orig := objectStore
	objectStore = func(*config.Config, logging.Logger) (minio.ObjectStorageRepository, string, func() error, error) {
		return store, "bundles", func() error { store.closed = true; return nil }, nil
	}
	t.Cleanup(func() { objectStore = orig })
	return store
}

func TestBundlePush(t *testing.T) {
	store := withMemStore(t)
	dir := testutil.WriteSampleBundle(t)

	out, _, err := execute(t, "bundle", "push", "--from", dir, "--prefix", "pfas/v2")
	require.NoError(t, err)
	assert.Contains(t, out, "published 2 objects to s3://bundles/pfas/v2")
	assert.Contains(t, store.uploads, "bundles/pfas/v2/manifest.json")
	assert.Equal(t, []byte(testutil.SampleModel), store.uploads["bundles/pfas/v2/model.json"])
	assert.True(t, store.closed)
}

func TestBundlePush_VerifiesFirst(t *testing.T) {
	store := withMemStore(t)
	m := testutil.SampleManifest()
	m["fp_mask"] = []bool{true}
	dir := testutil.WriteBundle(t, m)

	_, _, err := execute(t, "bundle", "push", "--from", dir)
	require.Error(t, err)
	assert.Empty(t, store.uploads)

	_, _, err = execute(t, "bundle", "push", "--from", dir, "--verify=false")
	require.NoError(t, err)
	assert.Len(t, store.uploads, 2)
}

func TestBundlePush_FromRequired(t *testing.T) {
	withMemStore(t)
	_, _, err := execute(t, "bundle", "push")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from")
}

// ─────────────────────────────────────────────────────────────────────────────
// serve
// ─────────────────────────────────────────────────────────────────────────────

func TestServe_RequiredBundleMissing(t *testing.T) {
	t.Setenv("TOXPRED_ARTIFACTS_REQUIRED", "true")

	_, _, err := execute(t, "serve", "--bundle", t.TempDir(), "--port", "18089")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBundleUnreachable), err.Error())
}

func TestServe_Flags(t *testing.T) {
	cmd := newServeCmd()
	require.NotNil(t, cmd.Flags().Lookup("port"))
	assert.Equal(t, "p", cmd.Flags().Lookup("port").Shorthand)
	require.NotNil(t, cmd.Flags().Lookup("bundle"))
	require.NotNil(t, cmd.Flags().Lookup("grpc-port"))
}

//Personal.AI order the ending
