package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectionOK(t *testing.T) {
	raw := []byte(`{
		"result": "ok",
		"data": [
			{"id": "m1", "type": "manga", "attributes": {"title": {"en": "A"}, "status": "ongoing"}}
		],
		"limit": 20, "offset": 0, "total": 1
	}`)

	col, err := NewValidator().Collection(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, col.Total)
	require.Len(t, col.Data, 1)
	assert.Equal(t, "m1", col.Data[0].ID)
}

func TestValidatorRejectsBadEnum(t *testing.T) {
	raw := []byte(`{
		"result": "ok",
		"data": [
			{"id": "m1", "type": "manga", "attributes": {"status": "renewed"}}
		],
		"total": 1
	}`)

	_, err := NewValidator().Collection(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Fields)
	assert.Contains(t, verr.Fields[0].Field, "Status")
}

func TestValidatorCollectsEveryFailure(t *testing.T) {
	raw := []byte(`{
		"result": "ok",
		"data": [
			{"id": "", "type": "", "attributes": {"status": "renewed", "contentRating": "spicy"}}
		],
		"total": 1
	}`)

	_, err := NewValidator().Collection(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// id, type, status and contentRating all failed; all are reported
	assert.GreaterOrEqual(t, len(verr.Fields), 4)
}

func TestValidatorRejectsErrorResult(t *testing.T) {
	raw := []byte(`{"result": "error", "data": {"id": "x", "type": "manga"}}`)

	_, err := NewValidator().Single(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidatorMalformedJSON(t *testing.T) {
	_, err := NewValidator().Collection([]byte(`{"result":`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, strings.Contains(verr.Error(), "malformed JSON"))
}

func TestValidatorSingleOK(t *testing.T) {
	raw := []byte(`{
		"result": "ok",
		"data": {
			"id": "ch1", "type": "chapter",
			"attributes": {"title": "Ch 1", "chapter": "1", "pages": 10},
			"relationships": [{"id": "g1", "type": "scanlation_group", "attributes": {"name": "G"}}]
		}
	}`)

	single, err := NewValidator().Single(raw)
	require.NoError(t, err)
	assert.Equal(t, "ch1", single.Data.ID)
	assert.Equal(t, "Ch 1", single.Data.Attributes.plainTitle())
}
