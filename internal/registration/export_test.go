package registration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExportCSV(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, service.ExportCSV(ctx, &buf))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(raw[3:]))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.NotContains(t, header, "senha")
	assert.Contains(t, header, "nome_completo")
	assert.Contains(t, header, "criado_em")

	record := rows[1]
	require.Len(t, record, len(header))
	assert.Contains(t, record, "maria@example.com")
	assert.Contains(t, record, "ai; data")
	assert.NotContains(t, strings.Join(record, ","), "segredo123")
}

func Test_ExportJSON(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, service.ExportJSON(ctx, &buf))

	var items []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "maria@example.com", items[0]["email"])
	assert.NotContains(t, items[0], "senha")
}
