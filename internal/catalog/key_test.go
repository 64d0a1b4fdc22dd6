package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeKeyDeterministic(t *testing.T) {
	a := url.Values{}
	a.Set("title", "one piece")
	a.Set("limit", "20")
	a.Add("tags", "action")
	a.Add("tags", "drama")

	b := url.Values{}
	b.Add("tags", "drama")
	b.Add("tags", "action")
	b.Set("limit", "20")
	b.Set("title", "one piece")

	assert.Equal(t, ComputeKey("search", a), ComputeKey("search", b))
}

func TestComputeKeyShape(t *testing.T) {
	params := url.Values{}
	params.Set("title", "one piece")
	params.Set("limit", "20")

	assert.Equal(t, "search:limit=20&title=one+piece", ComputeKey("search", params))
}

func TestComputeKeySkipsEmptyValues(t *testing.T) {
	params := url.Values{}
	params.Set("title", "")
	params.Set("limit", "20")

	assert.Equal(t, "search:limit=20", ComputeKey("search", params))
}

func TestComputeKeyNoParams(t *testing.T) {
	assert.Equal(t, "tags", ComputeKey("tags", nil))
	assert.Equal(t, "tags", ComputeKey("tags", url.Values{}))
}

func TestComputeKeyDistinguishesEndpoints(t *testing.T) {
	params := url.Values{"id": {"abc"}}
	assert.NotEqual(t, ComputeKey("manga", params), ComputeKey("chapter", params))
}
