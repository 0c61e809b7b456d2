package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)

	for _, path := range []string{
		"/auth/login",
		"/auth/callback",
		"/auth/logout",
		"/auth/me",
		"/contact",
		"/join",
		"/donations/orders",
		"/invoices",
		"/invoices/download",
		"/invoices/regenerate",
		"/invoices/{id}/download",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}
