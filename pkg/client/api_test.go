package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/config"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/testutil"
)

// newAPIClient serves the real router over the bundle in dir.
func newAPIClient(t *testing.T, dir string) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Artifacts.Path = dir
	a, err := app.New(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	server := httptest.NewServer(a.Handler)
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func pfoaRequest(temperature float64) *PredictionRequest {
	return &PredictionRequest{
		SMILES:        testutil.SamplePFOA,
		Temperature:   temperature,
		Light:         1000,
		Time:          7,
		Concentration: 10,
		Species:       "Daphnia magna",
		Habitat:       "Marine",
	}
}

func TestAPI_Predict(t *testing.T) {
	c := newAPIClient(t, testutil.WriteSampleBundle(t))
	ctx := context.Background()

	res, err := c.Predictions().Predict(ctx, pfoaRequest(25))
	require.NoError(t, err)
	assert.InDelta(t, 2.75, res.Prediction, 1e-6)
	assert.True(t, res.InDomain())
	assert.Nil(t, res.Reasons())
	assert.InDelta(t, 1.0, res.Similarity, 1e-9)

	res, err = c.Predictions().Predict(ctx, pfoaRequest(45))
	require.NoError(t, err)
	assert.InDelta(t, 2.75, res.Prediction, 1e-6)
	assert.False(t, res.InDomain())
	assert.Equal(t, []string{"temperature out of range (45.0 not in [10.00, 30.00])"}, res.Reasons())
}

func TestAPI_PredictErrors(t *testing.T) {
	c := newAPIClient(t, testutil.WriteSampleBundle(t))
	ctx := context.Background()

	_, err := c.Predictions().Predict(ctx, &PredictionRequest{})
	require.Error(t, err)

	req := pfoaRequest(25)
	req.SMILES = "C1CC"
	_, err = c.Predictions().Predict(ctx, req)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "MOL_001", apiErr.Code)
	assert.Equal(t, "Invalid SMILES", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestAPI_OptionsAndBundle(t *testing.T) {
	c := newAPIClient(t, testutil.WriteSampleBundle(t))
	ctx := context.Background()

	opts, err := c.Predictions().Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Daphnia magna", "Danio rerio"}, opts["Species"])

	info, err := c.Predictions().Bundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-1", info.Version)
	assert.Equal(t, testutil.SampleFeatureDim, info.Features)
	assert.Equal(t, 2, info.CorpusSize)
	assert.InDelta(t, 0.65, info.Threshold, 1e-12)
}

func TestAPI_Molecules(t *testing.T) {
	c := newAPIClient(t, testutil.WriteSampleBundle(t))
	ctx := context.Background()

	s, err := c.Molecules().Standardize(ctx, "OC(=O)C(F)(F)F.[Na+]")
	require.NoError(t, err)
	assert.Contains(t, s.StandardizedSMILES, "[O-]")
	assert.NotContains(t, s.StandardizedSMILES, "Na")

	fp, err := c.Molecules().Fingerprint(ctx, testutil.SamplePFOA)
	require.NoError(t, err)
	assert.Len(t, fp.Bits, 167)
	assert.Equal(t, fp.Count, len(fp.OnBits))

	sim, err := c.Molecules().Similarity(ctx, testutil.SamplePFOA, testutil.SamplePFOA, "CCO")
	require.NoError(t, err)
	require.Len(t, sim.Scores, 2)
	assert.InDelta(t, 1.0, sim.Scores[0], 1e-9)
	assert.InDelta(t, 1.0, sim.Max, 1e-9)

	_, err = c.Molecules().Similarity(ctx, testutil.SamplePFOA)
	assert.Error(t, err)
}

func TestAPI_Probes(t *testing.T) {
	c := newAPIClient(t, testutil.WriteSampleBundle(t))
	ctx := context.Background()

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alive", h.Status)

	r, err := c.Ready(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", r.Status)
	assert.Equal(t, "healthy", r.Components["model"].Status)
}

func TestAPI_Degraded(t *testing.T) {
	c := newAPIClient(t, t.TempDir())
	ctx := context.Background()

	_, err := c.Predictions().Predict(ctx, pfoaRequest(25))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsModelNotLoaded())
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	_, err = c.Ready(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alive", h.Status)
}

//Personal.AI order the ending
