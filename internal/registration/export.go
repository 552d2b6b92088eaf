package registration

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inova/internal/audit"
	"inova/pkg/requestcontext"
)

// csvHeader fixes the export column order. senha is not in the read model,
// so it cannot appear here.
var csvHeader = []string{
	"id", "nome_completo", "cpf", "email", "nome_social", "celular",
	"data_nascimento", "pais", "estado", "vinculo_institucional", "empresa",
	"cargo", "outro_cargo", "lideranca", "servidor_publico",
	"tipo_participacao", "areas_interesse", "deficiencia",
	"tipos_deficiencia", "raca", "genero", "inovagov", "comunicacoes",
	"laboratorio", "nome_laboratorio", "termos_participacao",
	"compartilhamento_dados", "processamento_dados", "uso_imagem",
	"alteracoes_evento", "criado_em", "atualizado_em",
}

// ExportCSV streams every registration as UTF-8 CSV. A byte order mark is
// written first so spreadsheet tools pick up the encoding.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	items := s.store.ListAll(ctx)
	for _, reg := range items {
		if err := writer.Write(csvRow(reg)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	s.emitExportAudit(ctx, "csv", len(items))
	return nil
}

// ExportJSON writes every registration as one JSON array.
func (s *Service) ExportJSON(ctx context.Context, w io.Writer) error {
	items := s.store.ListAll(ctx)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(items); err != nil {
		return err
	}

	s.emitExportAudit(ctx, "json", len(items))
	return nil
}

func (s *Service) emitExportAudit(ctx context.Context, format string, count int) {
	admin := requestcontext.Admin(ctx)
	s.auditor.Emit(ctx, audit.ActionDataExport, admin.Email, fmt.Sprintf("format=%s count=%d", format, count))
}

func csvRow(reg *Registration) []string {
	return []string{
		strconv.FormatInt(reg.ID, 10),
		reg.NomeCompleto,
		reg.CPF,
		reg.Email,
		reg.NomeSocial,
		reg.Celular,
		reg.DataNascimento,
		reg.Pais,
		reg.Estado,
		reg.VinculoInstitucional,
		reg.Empresa,
		reg.Cargo,
		reg.OutroCargo,
		reg.Lideranca,
		reg.ServidorPublico,
		reg.TipoParticipacao,
		strings.Join(reg.AreasInteresse, "; "),
		reg.Deficiencia,
		strings.Join(reg.TiposDeficiencia, "; "),
		reg.Raca,
		reg.Genero,
		reg.Inovagov,
		reg.Comunicacoes,
		reg.Laboratorio,
		reg.NomeLaboratorio,
		strconv.Itoa(reg.TermosParticipacao),
		strconv.Itoa(reg.CompartilhamentoDados),
		strconv.Itoa(reg.ProcessamentoDados),
		strconv.Itoa(reg.UsoImagem),
		strconv.Itoa(reg.AlteracoesEvento),
		reg.CriadoEm,
		reg.AtualizadoEm,
	}
}
