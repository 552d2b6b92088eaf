package registration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inova/internal/audit"
	"inova/internal/platform/metrics"
	"inova/pkg/apierrors"
)

func newTestService(store Store) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, audit.NewService(logger), metrics.New(prometheus.NewRegistry()), logger)
}

func validSubmission() *Submission {
	return &Submission{
		NomeCompleto:     "Maria da Silva",
		CPF:              "52998224725",
		Email:            "maria@example.com",
		Senha:            "segredo123",
		Estado:           "DF",
		Empresa:          "Ministerio da Gestao",
		TipoParticipacao: "presencial",
		ServidorPublico:  "sim",
		AreasInteresse:   []string{"ai", "data"},
	}
}

func Test_Submit_Success(t *testing.T) {
	service := newTestService(NewMemoryStore())

	id, err := service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	reg := service.FindByEmail(context.Background(), "maria@example.com")
	require.NotNil(t, reg)
	assert.Equal(t, "Maria da Silva", reg.NomeCompleto)
	assert.Equal(t, reg.CriadoEm, reg.AtualizadoEm)
	assert.NotEmpty(t, reg.CriadoEm)
}

func Test_Submit_Defaults(t *testing.T) {
	service := newTestService(NewMemoryStore())

	sub := validSubmission()
	sub.Pais = ""
	sub.Deficiencia = ""
	sub.Laboratorio = ""

	_, err := service.Submit(context.Background(), sub)
	require.NoError(t, err)

	reg := service.FindByEmail(context.Background(), sub.Email)
	require.NotNil(t, reg)
	assert.Equal(t, "BR", reg.Pais)
	assert.Equal(t, "nao", reg.Deficiencia)
	assert.Equal(t, "nao", reg.Laboratorio)

	// Absent consent flags default to granted.
	assert.Equal(t, 1, reg.TermosParticipacao)
	assert.Equal(t, 1, reg.CompartilhamentoDados)
	assert.Equal(t, 1, reg.ProcessamentoDados)
	assert.Equal(t, 1, reg.UsoImagem)
	assert.Equal(t, 1, reg.AlteracoesEvento)
}

func Test_Submit_ExplicitConsentZeroKept(t *testing.T) {
	service := newTestService(NewMemoryStore())

	zero := 0
	sub := validSubmission()
	sub.UsoImagem = &zero

	_, err := service.Submit(context.Background(), sub)
	require.NoError(t, err)

	reg := service.FindByEmail(context.Background(), sub.Email)
	require.NotNil(t, reg)
	assert.Equal(t, 0, reg.UsoImagem)
	assert.Equal(t, 1, reg.TermosParticipacao)
}

func Test_Submit_DuplicateEmail(t *testing.T) {
	store := NewMemoryStore()
	service := newTestService(store)
	ctx := context.Background()

	_, err := service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	second := validSubmission()
	second.CPF = "11144477735"
	second.NomeCompleto = "Outra Pessoa"
	_, err = service.Submit(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.True(t, apierrors.Is(err, apierrors.CodeDuplicateEntry))

	// No second row was created.
	assert.Equal(t, int64(1), store.Count(ctx))
}

func Test_Submit_DuplicateCPF(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	second := validSubmission()
	second.Email = "other@example.com"
	_, err = service.Submit(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateCPF)
}

func Test_Submit_RequiredFields(t *testing.T) {
	service := newTestService(NewMemoryStore())

	sub := validSubmission()
	sub.NomeCompleto = "   "
	sub.CPF = ""

	_, err := service.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, apierrors.Is(err, apierrors.CodeValidation))
	assert.Contains(t, err.Error(), "nome_completo")
	assert.Contains(t, err.Error(), "cpf")
}

func Test_Submit_InvalidEmail(t *testing.T) {
	service := newTestService(NewMemoryStore())

	sub := validSubmission()
	sub.Email = "not-an-email"

	_, err := service.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, apierrors.Is(err, apierrors.CodeValidation))
}

func Test_Submit_AreasRoundTrip(t *testing.T) {
	service := newTestService(NewMemoryStore())

	_, err := service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	reg := service.FindByEmail(context.Background(), "maria@example.com")
	require.NotNil(t, reg)
	assert.Equal(t, []string{"ai", "data"}, reg.AreasInteresse)
	assert.Equal(t, []string{}, reg.TiposDeficiencia)
}

func Test_ReadModel_NeverCarriesPassword(t *testing.T) {
	service := newTestService(NewMemoryStore())

	_, err := service.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	reg := service.FindByEmail(context.Background(), "maria@example.com")
	require.NotNil(t, reg)

	encoded, err := json.Marshal(reg)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "senha")
	assert.NotContains(t, string(encoded), "segredo123")
}

func Test_List_PaginationAndSearch(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	names := []string{"Ana", "Bruno", "Carla"}
	cpfs := []string{"52998224725", "11144477735", "93541134780"}
	for i, name := range names {
		sub := validSubmission()
		sub.NomeCompleto = name
		sub.Email = name + "@example.com"
		sub.CPF = cpfs[i]
		_, err := service.Submit(ctx, sub)
		require.NoError(t, err)
	}

	page := service.List(ctx, 1, 2, "")
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	page = service.List(ctx, 2, 2, "")
	assert.Len(t, page.Items, 1)
	assert.True(t, page.Pagination.HasPrev)

	found := service.List(ctx, 1, 50, "bruno")
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Bruno", found.Items[0].NomeCompleto)
}

func Test_Statistics(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	cpfs := []string{"52998224725", "11144477735", "93541134780"}
	modes := []string{"presencial", "presencial", "online"}
	for i := range emails {
		sub := validSubmission()
		sub.Email = emails[i]
		sub.CPF = cpfs[i]
		sub.TipoParticipacao = modes[i]
		_, err := service.Submit(ctx, sub)
		require.NoError(t, err)
	}

	stats := service.Statistics(ctx)
	assert.Equal(t, int64(3), stats.Total)
	require.NotEmpty(t, stats.Participacao)
	assert.Equal(t, "presencial", stats.Participacao[0].Value)
	assert.Equal(t, int64(2), stats.Participacao[0].Count)
}

func Test_Delete(t *testing.T) {
	service := newTestService(NewMemoryStore())
	ctx := context.Background()

	id, err := service.Submit(ctx, validSubmission())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, id))
	assert.Nil(t, service.FindByEmail(ctx, "maria@example.com"))

	err = service.Delete(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, apierrors.Is(err, apierrors.CodeNotFound))
}
