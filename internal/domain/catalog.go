package domain

import "fmt"

var defaultDocuments = []DocumentType{
	{ID: "procuracao", Label: "Procuração"},
	{ID: "contrato_honorarios", Label: "Contrato de Honorários"},
	{ID: "declaracao_hipossuficiencia", Label: "Declaração de Hipossuficiência"},
	{ID: "declaracao_residencia", Label: "Declaração de Residência"},
	{ID: "declaracao_composicao_familiar", Label: "Declaração de Composição Familiar"},
	{ID: "termo_representacao", Label: "Termo de Representação"},
	{ID: "requerimento_administrativo", Label: "Requerimento Administrativo"},
	{ID: "peticao_inicial", Label: "Petição Inicial"},
}

// Catalog is the ordered list of documents the office can generate. Order is
// declaration order and drives the generation order.
type Catalog struct {
	docs []DocumentType
}

// NewCatalog binds the default documents to backend template ids.
func NewCatalog(templates map[string]string) Catalog {
	docs := make([]DocumentType, len(defaultDocuments))
	copy(docs, defaultDocuments)
	for i := range docs {
		docs[i].TemplateID = templates[docs[i].ID]
	}
	return Catalog{docs: docs}
}

func (c Catalog) All() []DocumentType {
	out := make([]DocumentType, len(c.docs))
	copy(out, c.docs)
	return out
}

func (c Catalog) Lookup(id string) (DocumentType, bool) {
	for _, doc := range c.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return DocumentType{}, false
}

// Select returns the chosen documents in catalog order, whatever the order of
// ids.
func (c Catalog) Select(selected map[string]bool) []DocumentType {
	var out []DocumentType
	for _, doc := range c.docs {
		if selected[doc.ID] {
			out = append(out, doc)
		}
	}
	return out
}

// Validate rejects ids that are not in the catalog.
func (c Catalog) Validate(ids []string) error {
	for _, id := range ids {
		if _, ok := c.Lookup(id); !ok {
			return fmt.Errorf("documento desconhecido: %s", id)
		}
	}
	return nil
}
