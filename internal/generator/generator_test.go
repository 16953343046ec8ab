package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertShape(t *testing.T) {
	g := New(42)

	for i := 0; i < 50; i++ {
		doc := g.Alert()

		assert.Equal(t, "alert", doc["event_type"])
		assert.NotEmpty(t, doc["src_ip"])
		assert.NotEmpty(t, doc["dest_ip"])
		assert.NotEmpty(t, doc["timestamp"])

		alert, ok := doc["alert"].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, alert["signature"])
		sev, ok := alert["severity"].(int)
		require.True(t, ok)
		assert.GreaterOrEqual(t, sev, 1)
		assert.LessOrEqual(t, sev, 3)

		// Documents must survive the wire.
		_, err := json.Marshal(doc)
		require.NoError(t, err)
	}
}

func TestSeedReproducibility(t *testing.T) {
	a := New(7).Alert()
	b := New(7).Alert()

	assert.Equal(t, a["src_ip"], b["src_ip"])
	assert.Equal(t, a["proto"], b["proto"])
}
