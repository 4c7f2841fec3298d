package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/notice-scraper/internal/board"
)

func sampleNotice() board.Notice {
	return board.Notice{
		ID:        "726",
		Title:     "2025년 교육 일정 안내",
		Content:   `<div id="content_viewer"><p>본문 & 내용</p><img src="[[IMG:a.png]]" style="max-width: 100%;"/></div>`,
		Author:    "팜러닝",
		CreatedAt: "2025-03-04",
		ViewCount: 1234,
		IsPinned:  true,
		Attachments: []board.Attachment{{
			OriginalName: "신청서.hwp",
			Filename:     "신청서.hwp",
			LocalPath:    "migration_assets/726/신청서.hwp",
		}},
	}
}

func TestAggregatorKeepsOrder(t *testing.T) {
	agg := NewAggregator()
	for _, id := range []string{"3", "1", "2"} {
		agg.Add(board.Notice{ID: id})
	}
	require.Equal(t, 3, agg.Len())
	ids := make([]string, 0, 3)
	for _, n := range agg.Records() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestRecordsReturnsCopy(t *testing.T) {
	agg := NewAggregator()
	agg.Add(board.Notice{ID: "1"})
	records := agg.Records()
	records[0].ID = "changed"
	assert.Equal(t, "1", agg.Records()[0].ID)
}

func TestEncodeEmptyIsArray(t *testing.T) {
	data, err := NewAggregator().Encode()
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestEncodeNilAttachments(t *testing.T) {
	agg := NewAggregator()
	agg.Add(board.Notice{ID: "5"})
	data, err := agg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"attachments": []`)
}

func TestEncodeVerbatim(t *testing.T) {
	agg := NewAggregator()
	agg.Add(sampleNotice())
	data, err := agg.Encode()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "2025년 교육 일정 안내")
	assert.Contains(t, out, `<p>본문 & 내용</p>`)
	assert.NotContains(t, out, `\u003c`)
	assert.NotContains(t, out, `\u0026`)
	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"id\": \"726\""))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts", "notices_data.json")
	agg := NewAggregator()
	agg.Add(sampleNotice())
	require.NoError(t, agg.WriteJSON(path))

	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic, 1)
	rec := generic[0]
	assert.Len(t, rec, 8)
	assert.IsType(t, "", rec["id"])
	assert.IsType(t, "", rec["title"])
	assert.IsType(t, "", rec["content"])
	assert.IsType(t, "", rec["author"])
	assert.IsType(t, "", rec["created_at"])
	assert.IsType(t, float64(0), rec["view_count"])
	assert.IsType(t, true, rec["is_pinned"])
	assert.IsType(t, []any{}, rec["attachments"])

	var decoded []board.Notice
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []board.Notice{sampleNotice()}, decoded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteJSONOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	require.NoError(t, NewAggregator().WriteJSON(path))
	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestWriteJSONBadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	err := NewAggregator().WriteJSON(filepath.Join(blocker, "out.json"))
	assert.Error(t, err)
}
