package handlers_test

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/SscSPs/ledger_core/cmd/docs"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ginParam = regexp.MustCompile(`:(\w+)`)

// TestSwaggerDocMatchesRoutes keeps cmd/docs in step with the registered API:
// every /api/v1 route is documented and every documented operation is routed.
func TestSwaggerDocMatchesRoutes(t *testing.T) {
	router := newTestRouter(&portssvc.ServiceContainer{
		Account:      new(MockAccountService),
		JournalEntry: new(MockJournalEntryService),
		Reporting:    new(MockReportingService),
	})

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))
	require.Equal(t, "/api/v1", doc.BasePath)

	routed := map[string]bool{}
	for _, route := range router.Routes() {
		if !strings.HasPrefix(route.Path, doc.BasePath+"/") {
			continue
		}
		path := ginParam.ReplaceAllString(strings.TrimPrefix(route.Path, doc.BasePath), "{$1}")
		routed[strings.ToLower(route.Method)+" "+path] = true
	}

	documented := map[string]bool{}
	for path, operations := range doc.Paths {
		for method := range operations {
			documented[method+" "+path] = true
		}
	}

	assert.NotEmpty(t, routed)
	assert.Equal(t, routed, documented)
}
