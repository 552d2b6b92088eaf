package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"inova/internal/audit"
	"inova/internal/platform/metrics"
	"inova/pkg/apierrors"
	"inova/pkg/requestcontext"
)

// ErrNotFound is returned by Delete for an id with no row.
var ErrNotFound = apierrors.New(apierrors.CodeNotFound, "registration not found")

const (
	defaultPageSize = 50
	maxPageSize     = 200
	topStatesLimit  = 10
)

// Service validates submissions and mediates all registration reads.
type Service struct {
	store   Store
	auditor *audit.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor *audit.Service, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Submit validates a public sign-up and inserts it. The pre-checks give
// duplicate submissions a clear message; a racing duplicate that slips past
// them is caught by the store's unique constraints and reported with the
// same message, never as a server fault.
func (s *Service) Submit(ctx context.Context, sub *Submission) (int64, error) {
	if err := validateSubmission(sub); err != nil {
		return 0, err
	}

	if s.store.ExistsByEmail(ctx, sub.Email) {
		return 0, ErrDuplicateEmail
	}
	if s.store.ExistsByCPF(ctx, sub.CPF) {
		return 0, ErrDuplicateCPF
	}

	rec := buildRecord(sub, requestcontext.Now(ctx))
	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return 0, err
	}

	s.metrics.RegistrationsCreated.Inc()
	s.auditor.Emit(ctx, audit.ActionRegistrationCreated, sub.Email, fmt.Sprintf("id=%d", id))
	return id, nil
}

// List returns one page of registrations for the admin view.
func (s *Service) List(ctx context.Context, page, pageSize int, search string) *ListResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.store.List(ctx, page, pageSize, search)
}

// FindByEmail returns one registration without the password field, or nil.
func (s *Service) FindByEmail(ctx context.Context, email string) *Registration {
	return s.store.FindByEmail(ctx, email)
}

// Statistics aggregates the dashboard counters.
func (s *Service) Statistics(ctx context.Context) *Statistics {
	return &Statistics{
		Total:        s.store.Count(ctx),
		Participacao: s.store.CountByField(ctx, "tipo_participacao", 0),
		Servidores:   s.store.CountByField(ctx, "servidor_publico", 0),
		Estados:      s.store.CountByField(ctx, "estado", topStatesLimit),
	}
}

// Delete removes one registration by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	admin := requestcontext.Admin(ctx)
	s.auditor.Emit(ctx, audit.ActionRegistrationDeleted, admin.Email, fmt.Sprintf("id=%d", id))
	return nil
}

// Healthy reports whether the backing store answers.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.store.Healthy(ctx)
}

func validateSubmission(sub *Submission) error {
	sub.NomeCompleto = strings.TrimSpace(sub.NomeCompleto)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.CPF = strings.TrimSpace(sub.CPF)

	var missing []string
	if sub.NomeCompleto == "" {
		missing = append(missing, "nome_completo")
	}
	if sub.Email == "" {
		missing = append(missing, "email")
	}
	if sub.CPF == "" {
		missing = append(missing, "cpf")
	}
	if len(missing) > 0 {
		return apierrors.New(apierrors.CodeValidation,
			"required fields missing: "+strings.Join(missing, ", "))
	}
	if !govalidator.IsEmail(sub.Email) {
		return apierrors.New(apierrors.CodeValidation, "invalid email format")
	}
	return nil
}

func buildRecord(sub *Submission, now time.Time) *Record {
	stamp := now.UTC().Format(time.RFC3339)

	rec := &Record{
		Registration: Registration{
			NomeCompleto:          sub.NomeCompleto,
			CPF:                   sub.CPF,
			Email:                 sub.Email,
			NomeSocial:            sub.NomeSocial,
			Celular:               sub.Celular,
			DataNascimento:        sub.DataNascimento,
			Pais:                  sub.Pais,
			Estado:                sub.Estado,
			VinculoInstitucional:  sub.VinculoInstitucional,
			Empresa:               sub.Empresa,
			Cargo:                 sub.Cargo,
			OutroCargo:            sub.OutroCargo,
			Lideranca:             sub.Lideranca,
			ServidorPublico:       sub.ServidorPublico,
			TipoParticipacao:      sub.TipoParticipacao,
			AreasInteresse:        sub.AreasInteresse,
			Deficiencia:           sub.Deficiencia,
			TiposDeficiencia:      sub.TiposDeficiencia,
			Raca:                  sub.Raca,
			Genero:                sub.Genero,
			Inovagov:              sub.Inovagov,
			Comunicacoes:          sub.Comunicacoes,
			Laboratorio:           sub.Laboratorio,
			NomeLaboratorio:       sub.NomeLaboratorio,
			TermosParticipacao:    consentOrDefault(sub.TermosParticipacao),
			CompartilhamentoDados: consentOrDefault(sub.CompartilhamentoDados),
			ProcessamentoDados:    consentOrDefault(sub.ProcessamentoDados),
			UsoImagem:             consentOrDefault(sub.UsoImagem),
			AlteracoesEvento:      consentOrDefault(sub.AlteracoesEvento),
			CriadoEm:              stamp,
			AtualizadoEm:          stamp,
		},
		Senha: sub.Senha,
	}

	if rec.Pais == "" {
		rec.Pais = "BR"
	}
	if rec.Deficiencia == "" {
		rec.Deficiencia = "nao"
	}
	if rec.Laboratorio == "" {
		rec.Laboratorio = "nao"
	}
	if rec.AreasInteresse == nil {
		rec.AreasInteresse = []string{}
	}
	if rec.TiposDeficiencia == nil {
		rec.TiposDeficiencia = []string{}
	}
	return rec
}
