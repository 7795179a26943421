package records

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(HTTPConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		BaseID:  "appTest",
		Timeout: 5 * time.Second,
	}, logger.NewNop())
	return c, srv
}

func TestListBuildsRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(Page{Records: []Record{{ID: "g1"}}})
	})

	page, err := c.List(context.Background(), "Games", ListOptions{
		Filter:   `NOT({ShibaLink} = "")`,
		Sort:     []Sort{{Field: "Last Updated", Direction: "desc"}},
		PageSize: 100,
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	assert.Equal(t, "/appTest/Games", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, []string{"100"}, gotQuery["pageSize"])
	assert.Equal(t, []string{`NOT({ShibaLink} = "")`}, gotQuery["filterByFormula"])
	assert.Equal(t, []string{"Last Updated"}, gotQuery["sort[0][field]"])
	assert.Equal(t, []string{"desc"}, gotQuery["sort[0][direction]"])
}

func TestListNonSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.List(context.Background(), "Games", ListOptions{PageSize: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchAllWalksCursor(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("offset") {
		case "":
			json.NewEncoder(w).Encode(Page{Records: []Record{{ID: "r1"}, {ID: "r2"}}, Offset: "cur1"})
		case "cur1":
			json.NewEncoder(w).Encode(Page{Records: []Record{{ID: "r3"}}, Offset: "cur2"})
		case "cur2":
			json.NewEncoder(w).Encode(Page{Records: []Record{{ID: "r4"}}})
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})

	recs, err := FetchAll(context.Background(), c, "Posts", WalkOptions{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, recs, 4)
	assert.Equal(t, "r1", recs[0].ID)
	assert.Equal(t, "r4", recs[3].ID)
}

func TestFetchAllShortCircuitsAtLimit(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Page{
			Records: []Record{{ID: "a"}, {ID: "b"}},
			Offset:  "more",
		})
	})

	recs, err := FetchAll(context.Background(), c, "Games", WalkOptions{PageSize: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "walk should stop once the cap is reached")
	assert.Len(t, recs, 3)
}

func TestFetchAllAbortsOnPageFailure(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(Page{Records: []Record{{ID: "a"}}, Offset: "next"})
			return
		}
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	recs, err := FetchAll(context.Background(), c, "Games", WalkOptions{PageSize: 1})
	require.Error(t, err)
	assert.Nil(t, recs, "partial pages must be discarded")
}
