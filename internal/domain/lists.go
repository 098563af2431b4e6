package domain

import (
	"strings"

	"github.com/goccy/go-json"
)

// Cell is a spreadsheet value. The sheet may hand back numbers or booleans
// where a string is expected (an id or a CPF typed as a number), so any JSON
// scalar is kept as its text.
type Cell string

func (c *Cell) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	switch {
	case text == "null":
		*c = ""
	case strings.HasPrefix(text, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell(s)
	default:
		*c = Cell(text)
	}
	return nil
}

func (c Cell) String() string {
	return string(c)
}

// InterviewItem is one row of the interview log sheet.
type InterviewItem struct {
	ID           Cell `json:"id"`
	Nome         Cell `json:"nome"`
	CPF          Cell `json:"cpf"`
	AreaJuridica Cell `json:"area_juridica"`
	DataCadastro Cell `json:"data_cadastro"`
	Telefone     Cell `json:"telefone"`

	// Extra keeps the columns the console does not interpret.
	Extra map[string]any `json:"-"`
}

var interviewColumns = []string{"id", "nome", "cpf", "area_juridica", "data_cadastro", "telefone"}

func (i *InterviewItem) UnmarshalJSON(b []byte) error {
	type plain InterviewItem
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := extraColumns(b, interviewColumns)
	if err != nil {
		return err
	}
	*i = InterviewItem(p)
	i.Extra = extra
	return nil
}

func (i InterviewItem) MarshalJSON() ([]byte, error) {
	row := withColumns(i.Extra, map[string]any{
		"id":            i.ID,
		"nome":          i.Nome,
		"cpf":           i.CPF,
		"area_juridica": i.AreaJuridica,
		"data_cadastro": i.DataCadastro,
		"telefone":      i.Telefone,
	})
	return json.Marshal(row)
}

// VisitItem is one row of the visits sheet.
type VisitItem struct {
	ID       Cell        `json:"id"`
	Nome     Cell        `json:"nome"`
	Telefone Cell        `json:"telefone"`
	Endereco Cell        `json:"endereco"`
	Bairro   Cell        `json:"bairro"`
	Cidade   Cell        `json:"cidade"`
	Data     Cell        `json:"data"`
	Hora     Cell        `json:"hora"`
	Status   VisitStatus `json:"status"`

	Extra map[string]any `json:"-"`
}

var visitColumns = []string{"id", "nome", "telefone", "endereco", "bairro", "cidade", "data", "hora", "status"}

func (v *VisitItem) UnmarshalJSON(b []byte) error {
	type plain VisitItem
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := extraColumns(b, visitColumns)
	if err != nil {
		return err
	}
	*v = VisitItem(p)
	v.Extra = extra
	return nil
}

func (v VisitItem) MarshalJSON() ([]byte, error) {
	row := withColumns(v.Extra, map[string]any{
		"id":       v.ID,
		"nome":     v.Nome,
		"telefone": v.Telefone,
		"endereco": v.Endereco,
		"bairro":   v.Bairro,
		"cidade":   v.Cidade,
		"data":     v.Data,
		"hora":     v.Hora,
		"status":   v.Status,
	})
	return json.Marshal(row)
}

func extraColumns(b []byte, known []string) (map[string]any, error) {
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func withColumns(extra map[string]any, known map[string]any) map[string]any {
	row := make(map[string]any, len(extra)+len(known))
	for k, v := range extra {
		row[k] = v
	}
	for k, v := range known {
		row[k] = v
	}
	return row
}
