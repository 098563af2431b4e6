package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
)

// Ficha is what goes on the printable intake sheet.
type Ficha struct {
	Intake    domain.IntakeRecord
	Documents []domain.DocumentType
	Results   []domain.GeneratedFile
	CreatedAt time.Time
}

type PDFService struct {
	author string
}

func NewPDFService(author string) *PDFService {
	if strings.TrimSpace(author) == "" {
		author = "Atendimento Inicial"
	}
	return &PDFService{author: author}
}

type field struct {
	label string
	value string
}

// RenderFicha writes the intake sheet to w.
func (s *PDFService) RenderFicha(w io.Writer, ficha Ficha) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	in := ficha.Intake
	title := "Ficha de Atendimento"
	if name := strings.TrimSpace(in.Nome); name != "" {
		title = fmt.Sprintf("%s - %s", title, name)
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(s.author, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	createdAt := ficha.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Área: %s    Emitida em: %s", in.AreaJuridica, createdAt.Local().Format("02/01/2006 15:04"))))
	pdf.Ln(10)

	s.writeFields(pdf, tr, "Dados pessoais", []field{
		{"Nome", in.Nome},
		{"CPF", in.CPF},
		{"RG", in.RG},
		{"Nascimento", in.DataNascimento},
		{"Estado civil", in.EstadoCivil},
		{"Profissão", in.Profissao},
		{"Telefone", in.Telefone},
		{"E-mail", in.Email},
		{"Mãe", in.NomeMae},
	})

	address := strings.Join(nonEmpty(in.Endereco, in.Numero, in.Complemento, in.Bairro), ", ")
	s.writeFields(pdf, tr, "Endereço", []field{
		{"Logradouro", address},
		{"Cidade", strings.Join(nonEmpty(in.Cidade, in.UF), "/")},
		{"CEP", in.CEP},
		{"Referência", in.PontoReferencia},
	})

	if in.TemRepresentante {
		s.writeFields(pdf, tr, "Representante", []field{
			{"Nome", in.RepNome},
			{"CPF", in.RepCPF},
			{"Parentesco", in.RepGrauParentesco},
		})
	}

	if in.InformarComposicaoFamiliar && len(in.ComposicaoFamiliar) > 0 {
		s.writeFamily(pdf, tr, in.ComposicaoFamiliar)
	}

	s.writeFields(pdf, tr, "Dados da ação", []field{
		{"Parte contrária", in.ParteContrariaNome},
		{"Benefício", in.BeneficioRequerido},
		{"Via", in.ViaProcesso},
		{"DER", in.DER},
		{"NB", in.NB},
		{"Renda familiar", in.RendaFamiliarTotal},
		{"Indeferimento", in.MotivoIndeferimento},
	})

	if resumo := strings.TrimSpace(in.ResumoCaso); resumo != "" {
		s.writeSection(pdf, tr, "Resumo do caso")
		pdf.MultiCell(0, 6, tr(resumo), "", "L", false)
		pdf.Ln(4)
	}

	s.writeDocuments(pdf, tr, ficha.Documents, ficha.Results)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (s *PDFService) writeSection(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func (s *PDFService) writeFields(pdf *gofpdf.Fpdf, tr func(string) string, title string, fields []field) {
	s.writeSection(pdf, tr, title)
	for _, f := range fields {
		value := strings.TrimSpace(f.value)
		if value == "" {
			value = "-"
		}
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s: %s", f.label, value)), "", "L", false)
	}
	pdf.Ln(4)
}

func (s *PDFService) writeFamily(pdf *gofpdf.Fpdf, tr func(string) string, members []domain.FamilyMember) {
	s.writeSection(pdf, tr, "Composição familiar")

	widths := []float64{70, 40, 40, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Nome", "Parentesco", "Nascimento", "Renda"} {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range members {
		for i, v := range []string{m.Nome, m.GrauParentesco, m.DataNascimento, m.Renda} {
			pdf.CellFormat(widths[i], 7, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (s *PDFService) writeDocuments(pdf *gofpdf.Fpdf, tr func(string) string, docs []domain.DocumentType, results []domain.GeneratedFile) {
	if len(docs) == 0 && len(results) == 0 {
		return
	}
	s.writeSection(pdf, tr, "Documentos")

	if len(results) == 0 {
		for _, doc := range docs {
			pdf.MultiCell(0, 6, tr("- "+doc.Label), "", "L", false)
		}
		return
	}

	for _, r := range results {
		line := fmt.Sprintf("- %s: %s", r.Name, r.URL)
		if r.Failed() {
			pdf.SetTextColor(180, 30, 30)
			line = fmt.Sprintf("- %s: Falhou (%s)", r.Name, r.Error)
		}
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
