package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentIDWireFormat(t *testing.T) {
	// Root parents travel as the JSON number 0, in both directions.
	var p ParentID
	require.NoError(t, json.Unmarshal([]byte(`0`), &p))
	assert.True(t, p.IsRoot())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "0", string(out))

	// Non-root parents travel as string ids.
	require.NoError(t, json.Unmarshal([]byte(`"abc-123"`), &p))
	assert.False(t, p.IsRoot())
	assert.Equal(t, "abc-123", p.String())

	out, err = json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"abc-123"`, string(out))
}

func TestFileMarshalHidesInternals(t *testing.T) {
	path := "/tmp/blob"
	f := &File{
		ID:        "f1",
		UserID:    "u1",
		Name:      "report.pdf",
		Type:      FileTypeFile,
		ParentID:  RootParentID,
		LocalPath: &path,
	}

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "localPath")
	assert.NotContains(t, string(out), "/tmp/blob")
	assert.Contains(t, string(out), `"parentId":0`)
}
