package registration

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), 5*time.Second, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(email, cpf string) *Record {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return &Record{
		Registration: Registration{
			NomeCompleto:          "Maria da Silva",
			CPF:                   cpf,
			Email:                 email,
			Pais:                  "BR",
			Estado:                "DF",
			Empresa:               "Ministerio da Gestao",
			TipoParticipacao:      "presencial",
			AreasInteresse:        []string{"ai", "data"},
			TiposDeficiencia:      []string{},
			Deficiencia:           "nao",
			Laboratorio:           "nao",
			TermosParticipacao:    1,
			CompartilhamentoDados: 1,
			ProcessamentoDados:    1,
			UsoImagem:             1,
			AlteracoesEvento:      1,
			CriadoEm:              stamp,
			AtualizadoEm:          stamp,
		},
		Senha: "segredo123",
	}
}

func Test_SQLiteStore_InsertAndFind(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, testRecord("maria@example.com", "52998224725"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	assert.True(t, store.ExistsByEmail(ctx, "maria@example.com"))
	assert.True(t, store.ExistsByCPF(ctx, "52998224725"))
	assert.False(t, store.ExistsByEmail(ctx, "other@example.com"))

	reg := store.FindByEmail(ctx, "maria@example.com")
	require.NotNil(t, reg)
	assert.Equal(t, "Maria da Silva", reg.NomeCompleto)
	assert.Equal(t, []string{"ai", "data"}, reg.AreasInteresse)
	assert.Equal(t, []string{}, reg.TiposDeficiencia)
}

func Test_SQLiteStore_UniqueConstraints(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, testRecord("maria@example.com", "52998224725"))
	require.NoError(t, err)

	_, err = store.Insert(ctx, testRecord("maria@example.com", "11144477735"))
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = store.Insert(ctx, testRecord("other@example.com", "52998224725"))
	require.ErrorIs(t, err, ErrDuplicateCPF)

	assert.Equal(t, int64(1), store.Count(ctx))
}

func Test_SQLiteStore_CorruptedListColumn(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, testRecord("maria@example.com", "52998224725"))
	require.NoError(t, err)

	// Simulate malformed legacy data written by an earlier schema revision.
	_, err = store.db.ExecContext(ctx,
		"UPDATE inscricoes SET areas_interesse = 'not json' WHERE email = ?",
		"maria@example.com")
	require.NoError(t, err)

	reg := store.FindByEmail(ctx, "maria@example.com")
	require.NotNil(t, reg)
	assert.Equal(t, []string{}, reg.AreasInteresse)
}

func Test_SQLiteStore_ListSearchAndOrder(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testRecord("ana@example.com", "52998224725")
	first.NomeCompleto = "Ana"
	first.CriadoEm = "2025-01-01T10:00:00Z"
	first.AtualizadoEm = first.CriadoEm
	_, err := store.Insert(ctx, first)
	require.NoError(t, err)

	second := testRecord("bruno@example.com", "11144477735")
	second.NomeCompleto = "Bruno"
	second.Empresa = "Outra Empresa"
	second.CriadoEm = "2025-01-02T10:00:00Z"
	second.AtualizadoEm = second.CriadoEm
	_, err = store.Insert(ctx, second)
	require.NoError(t, err)

	result := store.List(ctx, 1, 50, "")
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Bruno", result.Items[0].NomeCompleto, "newest first")
	assert.Equal(t, int64(2), result.Pagination.Total)

	result = store.List(ctx, 1, 50, "Outra")
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Bruno", result.Items[0].NomeCompleto)
}

func Test_SQLiteStore_CountByField(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	states := []string{"DF", "DF", "SP"}
	cpfs := []string{"52998224725", "11144477735", "93541134780"}
	for i, state := range states {
		rec := testRecord("user"+state+cpfs[i]+"@example.com", cpfs[i])
		rec.Estado = state
		_, err := store.Insert(ctx, rec)
		require.NoError(t, err)
	}

	counts := store.CountByField(ctx, "estado", 10)
	require.Len(t, counts, 2)
	assert.Equal(t, FieldCount{Value: "DF", Count: 2}, counts[0])

	// Unknown columns never reach the SQL layer.
	assert.Empty(t, store.CountByField(ctx, "senha; DROP TABLE inscricoes", 10))
	assert.Equal(t, int64(3), store.Count(ctx))
}

func Test_SQLiteStore_DeleteByID(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, testRecord("maria@example.com", "52998224725"))
	require.NoError(t, err)

	deleted, err := store.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
