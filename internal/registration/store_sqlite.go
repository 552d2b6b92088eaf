package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"inova/pkg/apierrors"
)

const schema = `
CREATE TABLE IF NOT EXISTS inscricoes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nome_completo TEXT NOT NULL,
	cpf TEXT UNIQUE,
	email TEXT UNIQUE NOT NULL,
	senha TEXT,
	nome_social TEXT,
	celular TEXT,
	data_nascimento TEXT,
	pais TEXT DEFAULT 'BR',
	estado TEXT,
	vinculo_institucional TEXT,
	empresa TEXT,
	cargo TEXT,
	outro_cargo TEXT,
	lideranca TEXT,
	servidor_publico TEXT,
	tipo_participacao TEXT,
	areas_interesse TEXT,
	deficiencia TEXT DEFAULT 'nao',
	tipos_deficiencia TEXT,
	raca TEXT,
	genero TEXT,
	inovagov TEXT,
	comunicacoes TEXT,
	laboratorio TEXT DEFAULT 'nao',
	nome_laboratorio TEXT,
	termos_participacao INTEGER DEFAULT 1,
	compartilhamento_dados INTEGER DEFAULT 1,
	processamento_dados INTEGER DEFAULT 1,
	uso_imagem INTEGER DEFAULT 1,
	alteracoes_evento INTEGER DEFAULT 1,
	criado_em TEXT NOT NULL,
	atualizado_em TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inscricoes_criado_em ON inscricoes(criado_em);
`

// readColumns excludes senha. Every read query selects this list, so the
// password column physically cannot reach a response struct.
const readColumns = `id, nome_completo, COALESCE(cpf,''), email,
	COALESCE(nome_social,''), COALESCE(celular,''), COALESCE(data_nascimento,''),
	COALESCE(pais,'BR'), COALESCE(estado,''), COALESCE(vinculo_institucional,''),
	COALESCE(empresa,''), COALESCE(cargo,''), COALESCE(outro_cargo,''),
	COALESCE(lideranca,''), COALESCE(servidor_publico,''), COALESCE(tipo_participacao,''),
	COALESCE(areas_interesse,''), COALESCE(deficiencia,'nao'), COALESCE(tipos_deficiencia,''),
	COALESCE(raca,''), COALESCE(genero,''), COALESCE(inovagov,''), COALESCE(comunicacoes,''),
	COALESCE(laboratorio,'nao'), COALESCE(nome_laboratorio,''),
	COALESCE(termos_participacao,1), COALESCE(compartilhamento_dados,1),
	COALESCE(processamento_dados,1), COALESCE(uso_imagem,1), COALESCE(alteracoes_evento,1),
	criado_em, atualizado_em`

// groupableColumns is the allowlist for grouped counts. The group-by field
// is interpolated into SQL, so it must never come from request input
// without passing through this set.
var groupableColumns = map[string]bool{
	"tipo_participacao": true,
	"servidor_publico":  true,
	"estado":            true,
	"pais":              true,
	"deficiencia":       true,
	"raca":              true,
	"genero":            true,
}

// SQLiteStore persists registrations in an embedded SQLite database via
// database/sql.
type SQLiteStore struct {
	db           *sql.DB
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewSQLiteStore opens (and if needed creates) the database file, applies
// WAL mode and ensures the schema exists.
func NewSQLiteStore(path string, queryTimeout time.Duration, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		url.PathEscape(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite serializes writers; one connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		logger:       logger.With("component", "sqlite_store"),
		queryTimeout: queryTimeout,
	}, nil
}

func (s *SQLiteStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO inscricoes (
			nome_completo, cpf, email, senha, nome_social, celular, data_nascimento,
			pais, estado, vinculo_institucional, empresa, cargo, outro_cargo,
			lideranca, servidor_publico, tipo_participacao, areas_interesse,
			deficiencia, tipos_deficiencia, raca, genero, inovagov, comunicacoes,
			laboratorio, nome_laboratorio, termos_participacao, compartilhamento_dados,
			processamento_dados, uso_imagem, alteracoes_evento, criado_em, atualizado_em
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.NomeCompleto, rec.CPF, rec.Email, rec.Senha, rec.NomeSocial, rec.Celular,
		rec.DataNascimento, rec.Pais, rec.Estado, rec.VinculoInstitucional, rec.Empresa,
		rec.Cargo, rec.OutroCargo, rec.Lideranca, rec.ServidorPublico, rec.TipoParticipacao,
		encodeList(rec.AreasInteresse), rec.Deficiencia, encodeList(rec.TiposDeficiencia),
		rec.Raca, rec.Genero, rec.Inovagov, rec.Comunicacoes, rec.Laboratorio,
		rec.NomeLaboratorio, rec.TermosParticipacao, rec.CompartilhamentoDados,
		rec.ProcessamentoDados, rec.UsoImagem, rec.AlteracoesEvento,
		rec.CriadoEm, rec.AtualizadoEm,
	)
	if err != nil {
		if dup := mapConstraintError(err); dup != nil {
			return 0, dup
		}
		s.logger.ErrorContext(ctx, "insert failed", "error", err)
		return 0, apierrors.New(apierrors.CodeStorageUnavailable, "could not save registration")
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ExistsByEmail(ctx context.Context, email string) bool {
	return s.existsWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) ExistsByCPF(ctx context.Context, cpf string) bool {
	return s.existsWhere(ctx, "cpf = ?", cpf)
}

func (s *SQLiteStore) existsWhere(ctx context.Context, where string, arg any) bool {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM inscricoes WHERE "+where, arg).Scan(&id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, sql.ErrNoRows):
		return false
	default:
		// Unavailability reads as "not registered"; the unique constraint
		// still guards the insert.
		s.logger.ErrorContext(ctx, "existence check failed", "error", err)
		return false
	}
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) *Registration {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, "SELECT "+readColumns+" FROM inscricoes WHERE email = ?", email)
	reg, err := scanRegistration(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.ErrorContext(ctx, "lookup by email failed", "error", err)
		}
		return nil
	}
	return reg
}

func (s *SQLiteStore) List(ctx context.Context, page, pageSize int, search string) *ListResult {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where := ""
	args := []any{}
	if search != "" {
		where = "WHERE nome_completo LIKE ? OR email LIKE ? OR empresa LIKE ?"
		term := "%" + search + "%"
		args = append(args, term, term, term)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inscricoes "+where, args...).Scan(&total); err != nil {
		s.logger.ErrorContext(ctx, "list count failed", "error", err)
		return emptyListResult(page, pageSize)
	}

	query := "SELECT " + readColumns + " FROM inscricoes " + where +
		" ORDER BY criado_em DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		s.logger.ErrorContext(ctx, "list query failed", "error", err)
		return emptyListResult(page, pageSize)
	}
	defer rows.Close()

	items := []*Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			s.logger.ErrorContext(ctx, "list scan failed", "error", err)
			return emptyListResult(page, pageSize)
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "list iteration failed", "error", err)
		return emptyListResult(page, pageSize)
	}

	return &ListResult{Items: items, Pagination: buildPagination(page, pageSize, total)}
}

func (s *SQLiteStore) ListAll(ctx context.Context) []*Registration {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT "+readColumns+" FROM inscricoes ORDER BY criado_em DESC")
	if err != nil {
		s.logger.ErrorContext(ctx, "list all failed", "error", err)
		return []*Registration{}
	}
	defer rows.Close()

	items := []*Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			s.logger.ErrorContext(ctx, "list all scan failed", "error", err)
			return []*Registration{}
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "list all iteration failed", "error", err)
		return []*Registration{}
	}
	return items
}

func (s *SQLiteStore) Count(ctx context.Context) int64 {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inscricoes").Scan(&total); err != nil {
		s.logger.ErrorContext(ctx, "count failed", "error", err)
		return 0
	}
	return total
}

func (s *SQLiteStore) CountByField(ctx context.Context, field string, limit int) []FieldCount {
	if !groupableColumns[field] {
		s.logger.Error("refusing to group by unknown column", "field", field)
		return []FieldCount{}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) AS count FROM inscricoes WHERE %s IS NOT NULL GROUP BY %s ORDER BY count DESC",
		field, field, field)
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "grouped count failed", "error", err, "field", field)
		return []FieldCount{}
	}
	defer rows.Close()

	counts := []FieldCount{}
	for rows.Next() {
		var fc FieldCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			s.logger.ErrorContext(ctx, "grouped count scan failed", "error", err, "field", field)
			return []FieldCount{}
		}
		counts = append(counts, fc)
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "grouped count iteration failed", "error", err, "field", field)
		return []FieldCount{}
	}
	return counts
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, "DELETE FROM inscricoes WHERE id = ?", id)
	if err != nil {
		s.logger.ErrorContext(ctx, "delete failed", "error", err, "id", id)
		return false, apierrors.New(apierrors.CodeStorageUnavailable, "could not delete registration")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteStore) Healthy(ctx context.Context) bool {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx) == nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*Registration, error) {
	var reg Registration
	var areas, tipos string
	err := row.Scan(
		&reg.ID, &reg.NomeCompleto, &reg.CPF, &reg.Email,
		&reg.NomeSocial, &reg.Celular, &reg.DataNascimento,
		&reg.Pais, &reg.Estado, &reg.VinculoInstitucional,
		&reg.Empresa, &reg.Cargo, &reg.OutroCargo,
		&reg.Lideranca, &reg.ServidorPublico, &reg.TipoParticipacao,
		&areas, &reg.Deficiencia, &tipos,
		&reg.Raca, &reg.Genero, &reg.Inovagov, &reg.Comunicacoes,
		&reg.Laboratorio, &reg.NomeLaboratorio,
		&reg.TermosParticipacao, &reg.CompartilhamentoDados,
		&reg.ProcessamentoDados, &reg.UsoImagem, &reg.AlteracoesEvento,
		&reg.CriadoEm, &reg.AtualizadoEm,
	)
	if err != nil {
		return nil, err
	}
	reg.AreasInteresse = decodeList(areas)
	reg.TiposDeficiencia = decodeList(tipos)
	return &reg, nil
}

// encodeList serializes a multi-value field to the JSON text the column
// stores. Nil becomes an empty array so the round trip is stable.
func encodeList(values []string) string {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

// decodeList parses a stored multi-value column. Malformed legacy values
// degrade to an empty slice, never an error.
func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	if values == nil {
		return []string{}
	}
	return values
}

func mapConstraintError(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "inscricoes.cpf") {
		return ErrDuplicateCPF
	}
	return ErrDuplicateEmail
}
