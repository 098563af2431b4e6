package domain

// AreaJuridica is the legal area an intake is filed under.
type AreaJuridica string

const (
	AreaPrevidenciario AreaJuridica = "Previdenciário"
	AreaTrabalhista    AreaJuridica = "Trabalhista"
	AreaOutra          AreaJuridica = "Outra"
)

type FamilyMember struct {
	Nome           string `json:"nome"`
	GrauParentesco string `json:"grauParentesco"`
	DataNascimento string `json:"dataNascimento"`
	Renda          string `json:"renda"`
}

// IntakeRecord is the full client dataset of one intake session. Field names
// match the placeholders of the backend document templates.
type IntakeRecord struct {
	// Dados pessoais
	Nome           string `json:"nome"`
	CPF            string `json:"cpf"`
	RG             string `json:"rg"`
	DataNascimento string `json:"dataNascimento"`
	EstadoCivil    string `json:"estadoCivil"`
	Profissao      string `json:"profissao"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone"`

	NomeMae           string `json:"nomeMae"`
	CPFMae            string `json:"cpfMae"`
	RGMae             string `json:"rgMae"`
	DataNascimentoMae string `json:"dataNascimentoMae"`
	ProfissaoMae      string `json:"profissaoMae"`
	EstadoCivilMae    string `json:"estadoCivilMae"`

	CEP                    string `json:"cep"`
	Endereco               string `json:"endereco"`
	Numero                 string `json:"numero"`
	Complemento            string `json:"complemento"`
	Bairro                 string `json:"bairro"`
	Cidade                 string `json:"cidade"`
	UF                     string `json:"uf"`
	PontoReferencia        string `json:"pontoReferencia"`
	TemComprovanteEndereco bool   `json:"temComprovanteEndereco"`

	TemRepresentante  bool   `json:"temRepresentante"`
	MaeERepresentante bool   `json:"maeERepresentante"`
	RepNome           string `json:"repNome"`
	RepCPF            string `json:"repCpf"`
	RepRG             string `json:"repRg"`
	RepDataNascimento string `json:"repDataNascimento"`
	RepGrauParentesco string `json:"repGrauParentesco"`
	RepEstadoCivil    string `json:"repEstadoCivil"`
	RepProfissao      string `json:"repProfissao"`

	InformarComposicaoFamiliar bool           `json:"informarComposicaoFamiliar"`
	ComposicaoFamiliar         []FamilyMember `json:"composicaoFamiliar"`

	ClienteAnalfabeto bool   `json:"clienteAnalfabeto"`
	Testemunha1Nome   string `json:"testemunha1Nome"`
	Testemunha1CPF    string `json:"testemunha1Cpf"`
	Testemunha1RG     string `json:"testemunha1Rg"`
	Testemunha2Nome   string `json:"testemunha2Nome"`
	Testemunha2CPF    string `json:"testemunha2Cpf"`
	Testemunha2RG     string `json:"testemunha2Rg"`

	// Parte contrária
	ParteContrariaCNPJ        string `json:"parteContrariaCnpj"`
	ParteContrariaNome        string `json:"parteContrariaNome"`
	ParteContrariaRazaoSocial string `json:"parteContrariaRazaoSocial"`
	ParteContrariaCEP         string `json:"parteContrariaCep"`
	ParteContrariaEndereco    string `json:"parteContrariaEndereco"`
	ParteContrariaNumero      string `json:"parteContrariaNumero"`
	ParteContrariaBairro      string `json:"parteContrariaBairro"`
	ParteContrariaCidade      string `json:"parteContrariaCidade"`
	ParteContrariaUF          string `json:"parteContrariaUf"`

	// Dados da ação
	BeneficioRequerido  string `json:"beneficioRequerido"`
	ViaProcesso         string `json:"viaProcesso"`
	DER                 string `json:"der"`
	NB                  string `json:"nb"`
	NumCadUnico         string `json:"numCadUnico"`
	RendaFamiliarTotal  string `json:"rendaFamiliarTotal"`
	MotivoIndeferimento string `json:"motivoIndeferimento"`

	AreaJuridica AreaJuridica `json:"areaJuridica"`
	ResumoCaso   string       `json:"resumoCaso,omitempty"`
}

// DocumentType is one entry of the document catalog.
type DocumentType struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	TemplateID string `json:"templateId"`
}

// GeneratedFile is the outcome of one document generation. URL is set on
// success, Error on failure.
type GeneratedFile struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func (f GeneratedFile) Failed() bool {
	return f.URL == ""
}

type Progress struct {
	Message    string `json:"message"`
	Percentage int    `json:"percentage"`
}

type VisitStatus string

const (
	VisitScheduled    VisitStatus = "agendada"
	VisitCompleted    VisitStatus = "concluida"
	VisitNotCompleted VisitStatus = "não concluida"
)
