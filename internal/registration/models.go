// Package registration implements the public event sign-up flow and the
// administrative read side: listing, statistics, export and deletion.
package registration

// Registration is the read model returned to admin callers. It carries no
// password field at all: the senha column exists only on the write path, so
// no read-side code can leak it by accident.
//
// Field names keep the Portuguese wire names of the registration form; the
// response envelope around them is English.
type Registration struct {
	ID                    int64    `json:"id"`
	NomeCompleto          string   `json:"nome_completo"`
	CPF                   string   `json:"cpf"`
	Email                 string   `json:"email"`
	NomeSocial            string   `json:"nome_social"`
	Celular               string   `json:"celular"`
	DataNascimento        string   `json:"data_nascimento"`
	Pais                  string   `json:"pais"`
	Estado                string   `json:"estado"`
	VinculoInstitucional  string   `json:"vinculo_institucional"`
	Empresa               string   `json:"empresa"`
	Cargo                 string   `json:"cargo"`
	OutroCargo            string   `json:"outro_cargo"`
	Lideranca             string   `json:"lideranca"`
	ServidorPublico       string   `json:"servidor_publico"`
	TipoParticipacao      string   `json:"tipo_participacao"`
	AreasInteresse        []string `json:"areas_interesse"`
	Deficiencia           string   `json:"deficiencia"`
	TiposDeficiencia      []string `json:"tipos_deficiencia"`
	Raca                  string   `json:"raca"`
	Genero                string   `json:"genero"`
	Inovagov              string   `json:"inovagov"`
	Comunicacoes          string   `json:"comunicacoes"`
	Laboratorio           string   `json:"laboratorio"`
	NomeLaboratorio       string   `json:"nome_laboratorio"`
	TermosParticipacao    int      `json:"termos_participacao"`
	CompartilhamentoDados int      `json:"compartilhamento_dados"`
	ProcessamentoDados    int      `json:"processamento_dados"`
	UsoImagem             int      `json:"uso_imagem"`
	AlteracoesEvento      int      `json:"alteracoes_evento"`
	CriadoEm              string   `json:"criado_em"`
	AtualizadoEm          string   `json:"atualizado_em"`
}

// Record is the full row written by Insert. It embeds the read model plus
// the applicant-facing password, which never travels back out.
type Record struct {
	Registration
	Senha string `json:"-"`
}

// Submission is the public sign-up payload. Consent flags are pointers so
// an absent field can be told apart from an explicit zero: older form
// versions omit them and historically defaulted to granted.
type Submission struct {
	NomeCompleto          string   `json:"nome_completo"`
	CPF                   string   `json:"cpf"`
	Email                 string   `json:"email"`
	Senha                 string   `json:"senha"`
	NomeSocial            string   `json:"nome_social"`
	Celular               string   `json:"celular"`
	DataNascimento        string   `json:"data_nascimento"`
	Pais                  string   `json:"pais"`
	Estado                string   `json:"estado"`
	VinculoInstitucional  string   `json:"vinculo_institucional"`
	Empresa               string   `json:"empresa"`
	Cargo                 string   `json:"cargo"`
	OutroCargo            string   `json:"outro_cargo"`
	Lideranca             string   `json:"lideranca"`
	ServidorPublico       string   `json:"servidor_publico"`
	TipoParticipacao      string   `json:"tipo_participacao"`
	AreasInteresse        []string `json:"areas_interesse"`
	Deficiencia           string   `json:"deficiencia"`
	TiposDeficiencia      []string `json:"tipos_deficiencia"`
	Raca                  string   `json:"raca"`
	Genero                string   `json:"genero"`
	Inovagov              string   `json:"inovagov"`
	Comunicacoes          string   `json:"comunicacoes"`
	Laboratorio           string   `json:"laboratorio"`
	NomeLaboratorio       string   `json:"nome_laboratorio"`
	TermosParticipacao    *int     `json:"termos_participacao"`
	CompartilhamentoDados *int     `json:"compartilhamento_dados"`
	ProcessamentoDados    *int     `json:"processamento_dados"`
	UsoImagem             *int     `json:"uso_imagem"`
	AlteracoesEvento      *int     `json:"alteracoes_evento"`
}

// Pagination is the page metadata returned alongside a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// ListResult is one page of registrations.
type ListResult struct {
	Items      []*Registration
	Pagination Pagination
}

// FieldCount is one bucket of a grouped count.
type FieldCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Statistics is the aggregate snapshot shown on the admin dashboard.
type Statistics struct {
	Total        int64        `json:"total"`
	Participacao []FieldCount `json:"participacao"`
	Servidores   []FieldCount `json:"servidores"`
	Estados      []FieldCount `json:"estados"`
}

func consentOrDefault(v *int) int {
	if v == nil {
		return 1
	}
	return *v
}
