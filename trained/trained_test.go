package trained

import (
	"testing"

	"github.com/kestrelfmt/agon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSamples(t *testing.T, text string) []Value {
	t.Helper()
	v, err := agon.ParseJSON([]byte(text))
	require.NoError(t, err)
	return v.Array
}

func TestTrainInducesKeysAndTypes(t *testing.T) {
	samples := mustSamples(t, `[
		{"id":1,"name":"Alice","role":"admin"},
		{"id":2,"name":"Bob","role":"admin"},
		{"id":3,"name":"Carol","role":"user"}
	]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)
	assert.Equal(t, "t", cfg.CID)
	assert.Len(t, cfg.V, 16)
	assert.ElementsMatch(t, []string{"id", "name", "role"}, cfg.Schema.Keys)
	assert.Equal(t, KindScalar, cfg.Schema.Types["id"])
	assert.Equal(t, KindStr, cfg.Schema.Types["name"])
}

func TestTrainUpgradesRepeatedStringToDict(t *testing.T) {
	samples := mustSamples(t, `[
		{"role":"admin"},{"role":"admin"},{"role":"admin"},{"role":"admin"},
		{"role":"admin"},{"role":"admin"},{"role":"admin"},{"role":"admin"},
		{"role":"user"},{"role":"user"},{"role":"user"},{"role":"user"}
	]`)
	cfg, err := Train(samples, "t", WithMinGain(0))
	require.NoError(t, err)
	assert.Equal(t, KindDict, cfg.Schema.Types["role"])
	assert.Contains(t, cfg.Schema.Dicts["role"], "admin")
}

func TestTrainDoesNotUpgradeUniqueStrings(t *testing.T) {
	samples := mustSamples(t, `[{"name":"Alice"},{"name":"Bob"},{"name":"Carol"}]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)
	assert.Equal(t, KindStr, cfg.Schema.Types["name"])
}

func TestAnchorIsDeterministicAcrossTrainingRuns(t *testing.T) {
	samples := mustSamples(t, `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]`)
	cfg1, err := Train(samples, "t")
	require.NoError(t, err)
	cfg2, err := Train(samples, "t")
	require.NoError(t, err)
	assert.Equal(t, cfg1.V, cfg2.V)
}

func TestDenseFirstKeyOrdering(t *testing.T) {
	samples := mustSamples(t, `[
		{"id":1,"name":"Alice","nickname":"Al"},
		{"id":2,"name":"Bob"},
		{"id":3,"name":"Carol"}
	]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)
	idIdx := indexOf(cfg.Schema.Keys, "id")
	nameIdx := indexOf(cfg.Schema.Keys, "name")
	nickIdx := indexOf(cfg.Schema.Keys, "nickname")
	assert.True(t, idIdx < nickIdx)
	assert.True(t, nameIdx < nickIdx)
}

func indexOf(keys []string, k string) int {
	for i, x := range keys {
		if x == k {
			return i
		}
	}
	return -1
}

func TestEncodeDecodeTrainedRoundTrip(t *testing.T) {
	samples := mustSamples(t, `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)

	v, err := agon.ParseJSON([]byte(`[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]`))
	require.NoError(t, err)

	text, err := EncodeTrained(v, cfg, true, "")
	require.NoError(t, err)

	got, err := DecodeTrained(text, cfg, true)
	require.NoError(t, err)
	assert.True(t, agon.ValueEqual(v, got))
}

func TestEncodeTrainedTruncatesTrailingMissingOnly(t *testing.T) {
	samples := mustSamples(t, `[{"id":1,"name":"Alice","nickname":"Al"}]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)

	v, err := agon.ParseJSON([]byte(`[{"id":1,"name":"Alice"}]`))
	require.NoError(t, err)

	text, err := EncodeTrained(v, cfg, true, "")
	require.NoError(t, err)
	got, err := DecodeTrained(text, cfg, true)
	require.NoError(t, err)
	assert.True(t, agon.ValueEqual(v, got))
}

func TestEncodeTrainedPreservesExplicitNull(t *testing.T) {
	samples := mustSamples(t, `[{"id":1,"name":"Alice"}]`)
	cfg, err := Train(samples, "t")
	require.NoError(t, err)

	v, err := agon.ParseJSON([]byte(`[{"id":1,"name":null}]`))
	require.NoError(t, err)

	text, err := EncodeTrained(v, cfg, true, "")
	require.NoError(t, err)
	got, err := DecodeTrained(text, cfg, true)
	require.NoError(t, err)
	assert.True(t, agon.ValueEqual(v, got))
}

func TestEncodeTrainedFallsBackToJSONWhenCoverageFails(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1,"name":"Alice"}]`), "t")
	require.NoError(t, err)

	v, err := agon.ParseJSON([]byte(`[{"id":1,"name":"Alice","extra":"x"}]`))
	require.NoError(t, err)

	text, err := EncodeTrained(v, cfg, false, "")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"name":"Alice","extra":"x"}]`, text)
}

func TestDecodeTrainedRejectsCIDMismatchInStrictMode(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1}]`), "t")
	require.NoError(t, err)

	packet := `{"_f":"a","c":"wrong","v":"` + cfg.V + `","d":[]}`
	_, err = DecodeTrained(packet, cfg, true)
	require.Error(t, err)
	assert.True(t, errorIsKind(err, agon.ErrSchemaMismatch))
}

func errorIsKind(err error, kind agon.ErrorKind) bool {
	e, ok := err.(*agon.Error)
	return ok && e.Kind == kind
}

func TestDecodeTrainedPassesThroughCIDMismatchNonStrict(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1}]`), "t")
	require.NoError(t, err)

	packet := `{"_f":"a","c":"wrong","v":"` + cfg.V + `","d":[[1]]}`
	v, err := DecodeTrained(packet, cfg, false)
	require.NoError(t, err)
	require.Len(t, v.Array, 1)
}

func TestDecodeTrainedRejectsBadDictReferenceInStrictMode(t *testing.T) {
	samples := mustSamples(t, `[
		{"role":"admin"},{"role":"admin"},{"role":"admin"},{"role":"admin"},
		{"role":"user"},{"role":"user"},{"role":"user"},{"role":"user"}
	]`)
	cfg, err := Train(samples, "t", WithMinGain(0))
	require.NoError(t, err)
	require.Equal(t, KindDict, cfg.Schema.Types["role"])

	packet := `{"_f":"a","c":"t","v":"` + cfg.V + `","d":[[-99]]}`
	_, err = DecodeTrained(packet, cfg, true)
	require.Error(t, err)
	assert.True(t, errorIsKind(err, agon.ErrBadReference))
}

func TestDecodeTrainedRejectsDriftingRowShape(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1}]`), "t")
	require.NoError(t, err)

	packet := `{"_f":"a","c":"t","v":"` + cfg.V + `","d":[{"not":"an array"}]}`
	_, err = DecodeTrained(packet, cfg, true)
	require.Error(t, err)
	assert.True(t, errorIsKind(err, agon.ErrInvalidPayload) || errorIsKind(err, agon.ErrDriftDetected))
}

func TestJSONSchemaHasPrefixItemsPerKey(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1,"name":"Alice"}]`), "t")
	require.NoError(t, err)
	schema := JSONSchema(cfg)
	dSchema := schema.Properties["d"]
	require.NotNil(t, dSchema)
	require.NotNil(t, dSchema.Items)
	assert.Len(t, dSchema.Items.PrefixItems, len(cfg.Schema.Keys))
}

func TestSystemPromptMentionsCIDAnchorAndKeys(t *testing.T) {
	cfg, err := Train(mustSamples(t, `[{"id":1,"name":"Alice"}]`), "t")
	require.NoError(t, err)
	prompt := SystemPrompt(cfg)
	assert.Contains(t, prompt, cfg.CID)
	assert.Contains(t, prompt, cfg.V)
	assert.Contains(t, prompt, "id")
	assert.Contains(t, prompt, "name")
}
