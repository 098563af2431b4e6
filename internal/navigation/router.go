// Package navigation maps the URL fragment the browser holds to the page to
// render, and describes the sidebar. The state is an explicit value handed to
// the caller; nothing reads the location globally.
package navigation

import "strings"

type Page string

const (
	PageHome                 Page = "home"
	PageEntrevistas          Page = "entrevistas"
	PageVisitas              Page = "visitas"
	PagePortalPrevidenciario Page = "portal-previdenciario"
	PagePortalTrabalhista    Page = "portal-trabalhista"
	PageGestorDocumentos     Page = "gestor-documentos"
	PageConfigurarNomes      Page = "configurar-nomes"
	PageAperfeicoarAutomacao Page = "aperfeicoar-automacao"
	PageObservacoes          Page = "observacoes"
)

type Link struct {
	Href   string `json:"href"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Page   Page   `json:"page"`
	Active bool   `json:"active"`
}

type Section struct {
	Title string `json:"title"`
	Links []Link `json:"links"`
}

// State is what the shell needs to render: the resolved page and the
// sidebar with the active link marked.
type State struct {
	Fragment string    `json:"fragment"`
	Page     Page      `json:"page"`
	Sidebar  []Section `json:"sidebar"`
}

type Router struct {
	routes   map[string]Page
	sections []Section
}

func NewRouter() *Router {
	sections := []Section{
		{Title: "Principal", Links: []Link{
			{Href: "#home", Label: "Início", Icon: "home", Page: PageHome},
			{Href: "#entrevistas", Label: "Entrevistas", Icon: "file-text", Page: PageEntrevistas},
			{Href: "#visitas", Label: "Visitas", Icon: "calendar", Page: PageVisitas},
		}},
		{Title: "Novo Atendimento", Links: []Link{
			{Href: "#portal-previdenciario", Label: "Previdenciário", Icon: "shield", Page: PagePortalPrevidenciario},
			{Href: "#portal-trabalhista", Label: "Trabalhista", Icon: "briefcase", Page: PagePortalTrabalhista},
		}},
		{Title: "Ferramentas", Links: []Link{
			{Href: "#gestor-documentos", Label: "Gestor de Documentos & Tags", Icon: "folder-git-2", Page: PageGestorDocumentos},
			{Href: "#configurar-nomes", Label: "Configurar Detecção de Nomes", Icon: "sparkles", Page: PageConfigurarNomes},
			{Href: "#aperfeicoar-automacao", Label: "Aperfeiçoar Automação", Icon: "lightbulb", Page: PageAperfeicoarAutomacao},
			{Href: "#observacoes", Label: "Observações", Icon: "book-open", Page: PageObservacoes},
		}},
	}

	routes := map[string]Page{"": PageHome}
	for _, section := range sections {
		for _, link := range section.Links {
			routes[link.Href] = link.Page
		}
	}
	return &Router{routes: routes, sections: sections}
}

// Resolve maps a fragment ("#visitas", "visitas" or "") to its page.
// Unknown fragments fall back to the home page.
func (r *Router) Resolve(fragment string) State {
	fragment = normalize(fragment)
	page, ok := r.routes[fragment]
	if !ok {
		page = PageHome
	}
	if fragment == "" {
		fragment = "#home"
	}

	sidebar := make([]Section, len(r.sections))
	for i, section := range r.sections {
		links := make([]Link, len(section.Links))
		for j, link := range section.Links {
			link.Active = link.Href == fragment
			links[j] = link
		}
		sidebar[i] = Section{Title: section.Title, Links: links}
	}

	return State{Fragment: fragment, Page: page, Sidebar: sidebar}
}

func normalize(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || fragment == "#" {
		return ""
	}
	if !strings.HasPrefix(fragment, "#") {
		fragment = "#" + fragment
	}
	return fragment
}

// QuickAction is a card of the home page.
type QuickAction struct {
	Href        string `json:"href"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Primary     bool   `json:"primary"`
}

func QuickActions() []QuickAction {
	return []QuickAction{
		{Href: "#portal-previdenciario", Title: "Previdenciário", Description: "Nova ficha previdenciária", Primary: true},
		{Href: "#portal-trabalhista", Title: "Trabalhista", Description: "Nova ficha trabalhista"},
		{Href: "#entrevistas", Title: "Ver Entrevistas", Description: "Acessar fichas de clientes"},
		{Href: "#visitas", Title: "Visitas Agendadas", Description: "Controle de visitas"},
	}
}
