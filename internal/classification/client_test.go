package classification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsets/internal/subset/models"
	dErrors "subsets/pkg/domain-errors"
	"subsets/pkg/platform/sentinel"
)

func TestSnapshotQueryPath(t *testing.T) {
	tests := []struct {
		name     string
		query    SnapshotQuery
		expected string
	}{
		{
			name: "full window with language",
			query: SnapshotQuery{
				ClassificationID: "131",
				From:             models.MustDate("2020-01-01"),
				To:               models.MustDate("2022-01-01"),
				Language:         "nb",
			},
			expected: "/classifications/131/codes?from=2020-01-01&language=nb&to=2022-01-01",
		},
		{
			name: "open ended window omits to",
			query: SnapshotQuery{
				ClassificationID: "131",
				From:             models.MustDate("2020-01-01"),
				Language:         "en",
			},
			expected: "/classifications/131/codes?from=2020-01-01&language=en",
		},
		{
			name:     "id is path escaped",
			query:    SnapshotQuery{ClassificationID: "a b"},
			expected: "/classifications/a%20b/codes?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query.Path())
		})
	}
}

func TestClientSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classifications/131/codes", r.URL.Path)
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "nb", r.URL.Query().Get("language"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"codes":[{"code":"0301","name":"Oslo","level":1,"classificationVersion":"Kommuneinndeling 2020"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	snap, err := client.Snapshot(context.Background(), SnapshotQuery{
		ClassificationID: "131",
		From:             models.MustDate("2020-01-01"),
		Language:         "nb",
	})
	require.NoError(t, err)

	item, found := snap.Item("0301")
	require.True(t, found)
	assert.Equal(t, "Oslo", item.Name)
	assert.Equal(t, 1, item.Level)
	assert.Equal(t, "Kommuneinndeling 2020", item.ClassificationVersion)

	_, found = snap.Item("9999")
	assert.False(t, found)
}

func TestClientClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classifications/131", r.URL.Path)
		w.Write([]byte(`{"id":"131","statisticalUnits":["Kommune"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	cls, err := client.Classification(context.Background(), "131")
	require.NoError(t, err)
	assert.Equal(t, "131", cls.ID)
	assert.Equal(t, []string{"Kommune"}, cls.StatisticalUnits)
}

func TestClientErrorMapping(t *testing.T) {
	t.Run("404 maps to the not found sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Classification(context.Background(), "absent")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("5xx maps to an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Snapshot(context.Background(), SnapshotQuery{ClassificationID: "131"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
	})

	t.Run("unreachable host maps to an upstream error", func(t *testing.T) {
		_, err := NewClient("http://127.0.0.1:1").Classification(context.Background(), "131")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
	})

	t.Run("undecodable body maps to an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Classification(context.Background(), "131")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
	})
}
