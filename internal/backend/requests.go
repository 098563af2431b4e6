package backend

import (
	"net/url"
	"slices"
	"strings"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
)

// Action names a backend operation; the web app dispatches on it.
type Action string

const (
	ActionCreateFolder     Action = "criar_pasta"
	ActionGenerateDocument Action = "gerar_documento"
	ActionLogInterview     Action = "log_entrevista"
	ActionListInterviews   Action = "listar_entrevistas"
	ActionListVisits       Action = "listar_visitas"
)

// Request is the closed set of calls the backend understands. Writes carry a
// body and go out as POST; reads go out as GET with the action in the query.
type Request interface {
	Action() Action
	validate() error
	body() any
	query() url.Values
}

type CreateFolder struct {
	Nome string
	CPF  string
}

func (r CreateFolder) Action() Action { return ActionCreateFolder }

func (r CreateFolder) validate() error {
	return requireFields(r.Action(), map[string]string{"nome": r.Nome, "cpf": r.CPF})
}

func (r CreateFolder) body() any {
	return struct {
		Action Action `json:"action"`
		Nome   string `json:"nome"`
		CPF    string `json:"cpf"`
	}{r.Action(), r.Nome, r.CPF}
}

func (r CreateFolder) query() url.Values { return nil }

type GenerateDocument struct {
	TemplateID   string
	FolderID     string
	DocumentName string
	Data         domain.IntakeRecord
}

func (r GenerateDocument) Action() Action { return ActionGenerateDocument }

func (r GenerateDocument) validate() error {
	return requireFields(r.Action(), map[string]string{
		"templateId":     r.TemplateID,
		"pastaDestinoId": r.FolderID,
		"nomeDocumento":  r.DocumentName,
	})
}

func (r GenerateDocument) body() any {
	return struct {
		Action         Action              `json:"action"`
		TemplateID     string              `json:"templateId"`
		PastaDestinoID string              `json:"pastaDestinoId"`
		NomeDocumento  string              `json:"nomeDocumento"`
		Dados          domain.IntakeRecord `json:"dados"`
	}{r.Action(), r.TemplateID, r.FolderID, r.DocumentName, r.Data}
}

func (r GenerateDocument) query() url.Values { return nil }

// LogInterview appends one row to the interview sheet.
type LogInterview struct {
	Nome         string `json:"nome"`
	CPF          string `json:"cpf"`
	AreaJuridica string `json:"area_juridica"`
}

func (r LogInterview) Action() Action { return ActionLogInterview }

func (r LogInterview) validate() error {
	return requireFields(r.Action(), map[string]string{"nome": r.Nome})
}

func (r LogInterview) body() any {
	return struct {
		Action Action       `json:"action"`
		Dados  LogInterview `json:"dados"`
	}{r.Action(), r}
}

func (r LogInterview) query() url.Values { return nil }

type ListInterviews struct{}

func (ListInterviews) Action() Action    { return ActionListInterviews }
func (ListInterviews) validate() error   { return nil }
func (ListInterviews) body() any         { return nil }
func (ListInterviews) query() url.Values { return url.Values{} }

type ListVisits struct{}

func (ListVisits) Action() Action    { return ActionListVisits }
func (ListVisits) validate() error   { return nil }
func (ListVisits) body() any         { return nil }
func (ListVisits) query() url.Values { return url.Values{} }

func requireFields(action Action, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &Error{
		Kind:    KindInvalid,
		Action:  action,
		Message: "campos obrigatórios ausentes: " + strings.Join(missing, ", "),
	}
}
