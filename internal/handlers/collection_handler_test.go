// internal/handlers/collection_handler_test.go
package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashcard_quiz/internal/ingest"
	"flashcard_quiz/internal/model"
)

func TestCollectionHandler_PutCollection(t *testing.T) {
	tests := []struct {
		name           string
		collection     string
		body           string
		expectedStatus int
		expectedCode   string
		accepted       int
		dropped        int
	}{
		{
			name:           "Success",
			collection:     "biology",
			body:           biologyDeck,
			expectedStatus: http.StatusCreated,
			accepted:       2,
		},
		{
			name:           "Success - invalid items dropped",
			collection:     "mixed",
			body:           `[{"id":1,"front":{"a":"b"},"back":{"c":"d"}},{"id":null,"front":{},"back":{}}]`,
			expectedStatus: http.StatusCreated,
			accepted:       1,
			dropped:        1,
		},
		{
			name:           "Failure - top level is not an array",
			collection:     "broken",
			body:           `{"id":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "SCHEMA_ERROR",
		},
		{
			name:           "Failure - not JSON",
			collection:     "broken",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "SCHEMA_ERROR",
		},
		{
			name:           "Failure - empty body",
			collection:     "broken",
			body:           "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			rec := srv.do(t, http.MethodPut, "/api/v1/collections/"+tt.collection, tt.body, nil)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus != http.StatusCreated {
				if tt.expectedCode != "" {
					resp := decode[model.APIErrorResponse](t, rec)
					assert.Equal(t, tt.expectedCode, resp.Error.Code)
				}
				assert.Empty(t, srv.library.Overview().Collections)
				return
			}

			report := decode[ingest.Report](t, rec)
			assert.Equal(t, tt.collection, report.Collection)
			assert.Equal(t, tt.accepted, report.Accepted)
			assert.Len(t, report.Dropped, tt.dropped)
		})
	}
}

func TestCollectionHandler_GetCollections(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPut, "/api/v1/collections/biology", biologyDeck, nil).Code)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPut, "/api/v1/collections/physics", physicsDeck, nil).Code)

	rec := srv.do(t, http.MethodGet, "/api/v1/collections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	overview := decode[model.LibraryOverview](t, rec)
	require.Len(t, overview.Collections, 2)
	assert.Equal(t, "biology", overview.Collections[0].Name)
	assert.Equal(t, 2, overview.Collections[0].ItemCount)
	assert.True(t, overview.Collections[0].Selected)
	assert.Equal(t, "physics", overview.Collections[1].Name)
	assert.Equal(t, 3, overview.SelectedItemCount)
	assert.Equal(t, model.ModeFrontToBack, overview.Mode)
}

func TestCollectionHandler_Delete(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPut, "/api/v1/collections/biology", biologyDeck, nil).Code)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPut, "/api/v1/collections/physics", physicsDeck, nil).Code)

	t.Run("unknown collection", func(t *testing.T) {
		rec := srv.do(t, http.MethodDelete, "/api/v1/collections/chemistry", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})

	t.Run("single", func(t *testing.T) {
		rec := srv.do(t, http.MethodDelete, "/api/v1/collections/biology", "", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		overview := srv.library.Overview()
		require.Len(t, overview.Collections, 1)
		assert.Equal(t, "physics", overview.Collections[0].Name)
	})

	t.Run("all", func(t *testing.T) {
		require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, "/api/v1/settings/mode", `{"mode":"random"}`, nil).Code)

		rec := srv.do(t, http.MethodDelete, "/api/v1/collections", "", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		overview := srv.library.Overview()
		assert.Empty(t, overview.Collections)
		assert.Equal(t, model.DefaultReviewMode, overview.Mode)
	})
}

func TestCollectionHandler_PutCollection_TooLarge(t *testing.T) {
	srv := newTestServer(t)
	body := "[" + strings.Repeat(" ", 11<<20) + "]"
	rec := srv.do(t, http.MethodPut, "/api/v1/collections/huge", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
